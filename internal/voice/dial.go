package voice

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gorilla/websocket"
)

const liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContent"

// NewLiveDialer returns a Dialer for the hosted live endpoint,
// authenticated with the LIVE_API_KEY environment variable.
func NewLiveDialer() Dialer {
	return func(ctx context.Context) (UpstreamConn, error) {
		key := os.Getenv("LIVE_API_KEY")
		if key == "" {
			return nil, errors.New("LIVE_API_KEY is not set")
		}
		url := fmt.Sprintf("%s?key=%s", liveEndpoint, key)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("dial live endpoint: %w", err)
		}
		return conn, nil
	}
}
