package notifications

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type Ntfy struct {
	topicURL string
	client   *http.Client
}

func NewNtfy(topicURL string, client *http.Client) *Ntfy {
	return &Ntfy{
		topicURL: topicURL,
		client:   client,
	}
}

type ErrNotificationFailed struct {
	statusCode int
}

func (e ErrNotificationFailed) Error() string {
	return fmt.Sprintf("ntfy wrong response - want: 200 OK, got: %d", e.statusCode)
}

func NewErrNotificationFailed(statusCode int) ErrNotificationFailed {
	return ErrNotificationFailed{statusCode: statusCode}
}

/* Publishes a message to the ntfy topic announcing a new book on the shelf. */
func (ntf *Ntfy) BookAdded(ctx context.Context, name, publisher string) error {
	message := fmt.Sprintf("New book added: Name: %s Publisher: %s", name, publisher)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ntf.topicURL, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("delivering message (%s) to topic (%s): %w", message, ntf.topicURL, err)
	}
	req.Header.Set("Title", "Bookshelf")

	resp, err := ntf.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivering message (%s) to topic (%s): %w", message, ntf.topicURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delivering message (%s) to topic (%s): %w", message, ntf.topicURL, NewErrNotificationFailed(resp.StatusCode))
	}
	return nil
}
