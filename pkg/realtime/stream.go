package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
)

// EventKeepAlive is sent on idle streams so proxies keep the connection open.
const EventKeepAlive = "keepalive"

// Stream serves a live connection for recipient as Server-Sent Events until
// the client goes away or the connection is closed by the hub.
func (h *Hub) Stream(w http.ResponseWriter, r *http.Request, recipient string) error {
	conn, err := h.Connect(r.Context(), recipient)
	if err != nil {
		return err
	}
	defer conn.Close()

	sse := datastar.NewSSE(w, r)

	keepAlive := h.cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil

		case msg, ok := <-conn.Events():
			if !ok {
				return nil
			}
			data, err := json.Marshal(msg.Data.Payload)
			if err != nil {
				h.logger.Error("failed to encode live event",
					logger.UserID(recipient),
					logger.Event(msg.Data.Name),
					logger.Error(err),
				)
				continue
			}
			if err := sse.Send(datastar.EventType(msg.Data.Name), []string{string(data)}); err != nil {
				return errors.Join(ErrStreaming, err)
			}

		case <-ticker.C:
			if err := sse.Send(datastar.EventType(EventKeepAlive), []string{fmt.Sprintf(`{"at":%q}`, time.Now().UTC().Format(time.RFC3339))}); err != nil {
				return errors.Join(ErrStreaming, err)
			}
		}
	}
}
