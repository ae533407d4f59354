package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/cadencehq/console/internal/console"
	"github.com/cadencehq/console/internal/view"
)

// Handler manages WebSocket connections for live console sessions. Each
// connection drives one page at a time; every state-changing message is
// answered with a fresh page snapshot.
type Handler struct {
	sessions *SessionManager
	mgr      *console.Manager
	log      *slog.Logger
}

// NewHandler creates a WebSocket handler over a page manager.
func NewHandler(sessions *SessionManager, mgr *console.Manager, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{sessions: sessions, mgr: mgr, log: log}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	tenant := r.Header.Get("X-Tenant-ID")
	if tenant == "" {
		tenant = "default"
	}
	sess := h.sessions.Create(tenant)
	defer h.sessions.Remove(sess.ID)
	ctx := r.Context()

	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{
			SessionID: sess.ID,
			Tenant:    tenant,
			Available: h.mgr.Registry().IDs(),
		},
	})

	var page *console.Page
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				h.log.Debug("connection closed", "session", sess.ID, "status", status)
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case "open":
			page = h.handleOpen(ctx, conn, sess, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			if page == nil {
				h.sendError(ctx, conn, msg.ID, "no_collection", "open a collection first")
				continue
			}
			h.handlePageMessage(ctx, conn, page, msg)
		}
	}
}

func (h *Handler) handleOpen(ctx context.Context, conn *websocket.Conn, sess *Session, msg ClientMessage) *console.Page {
	var data OpenData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.Collection == "" {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid open data")
		return nil
	}
	page, err := h.mgr.Page(ctx, sess.TenantID, data.Collection)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "config_not_found", err.Error())
		return nil
	}
	sess.Collection = data.Collection
	h.sendState(ctx, conn, msg.ID, page)
	return page
}

func (h *Handler) handlePageMessage(ctx context.Context, conn *websocket.Conn, page *console.Page, msg ClientMessage) {
	switch msg.Type {
	case "refresh":
		// Errors land in the page phase and travel with the snapshot.
		_ = page.Load(ctx)

	case "search":
		var data SearchData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid search data")
			return
		}
		page.SetSearch(data.Query)

	case "filter":
		var data FilterData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.FilterID == "" {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid filter data")
			return
		}
		page.SetFilter(data.FilterID, data.Value)

	case "view_mode":
		var data ViewModeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid view_mode data")
			return
		}
		if err := page.SetMode(ctx, view.Mode(data.Mode)); err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_mode", err.Error())
			return
		}

	case "open_form":
		var data OpenFormData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid open_form data")
			return
		}
		var err error
		switch data.Mode {
		case "create":
			err = page.OpenCreate()
		case "edit":
			err = page.OpenEdit(data.RecordID)
		default:
			err = fmt.Errorf("unknown form mode %q", data.Mode)
		}
		if err != nil {
			h.sendError(ctx, conn, msg.ID, "form_error", err.Error())
			return
		}

	case "set_field":
		var data SetFieldData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid set_field data")
			return
		}
		if err := page.SetField(data.Key, data.Raw); err != nil {
			h.sendError(ctx, conn, msg.ID, "form_error", err.Error())
			return
		}

	case "submit":
		if err := page.Submit(ctx); err != nil {
			// The modal stays open with its values; the client shows the
			// error and lets the user retry.
			h.sendError(ctx, conn, msg.ID, "submit_failed", err.Error())
			return
		}

	case "close_form":
		page.CloseForm()

	case "delete":
		var data DeleteData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.RecordID == "" {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid delete data")
			return
		}
		if err := page.Delete(ctx, data.RecordID); err != nil {
			h.sendError(ctx, conn, msg.ID, "delete_failed", err.Error())
			return
		}

	default:
		h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		return
	}

	h.sendState(ctx, conn, msg.ID, page)
}

func (h *Handler) sendState(ctx context.Context, conn *websocket.Conn, requestID string, page *console.Page) {
	h.send(ctx, conn, ServerMessage{
		Type:      "state",
		RequestID: requestID,
		Data:      StateData{State: page.State()},
	})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.log.Warn("websocket write failed", "error", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
