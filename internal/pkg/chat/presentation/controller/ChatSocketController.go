package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	"github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/media"
	"github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/realtime"
	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/usecase"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/identity"
)

const (
	defaultReadTimeout = 60 * time.Second
	maxFrameSize       = 10 << 20 // uploads travel base64-encoded in a single frame

	// One generic denial for unknown usernames and wrong passwords alike.
	loginDeniedMessage = "invalid username or password"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The client is served from this same process.
		return true
	},
}

// ChatSocketController owns the websocket endpoint and drives every
// connection through the login → join → message/file → read-receipt →
// disconnect lifecycle. Events arriving outside their precondition are
// dropped without a reply; malformed or out-of-order client traffic never
// crashes or desynchronizes the server.
type ChatSocketController struct {
	router          *realtime.Router
	users           *identity.Store
	sendUC          *usecase.SendMessageUseCase
	sendFileUC      *usecase.SendFileUseCase
	historyUC       *usecase.LoadHistoryUseCase
	markReadUC      *usecase.MarkReadUseCase
	avatarUC        *usecase.UpdateAvatarUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(repo port.ChatRepository, cache cacheport.Cache, store *media.Store, users *identity.Store, router *realtime.Router) *ChatSocketController {
	return &ChatSocketController{
		router:          router,
		users:           users,
		sendUC:          usecase.NewSendMessageUseCase(repo, cache),
		sendFileUC:      usecase.NewSendFileUseCase(repo, store, cache),
		historyUC:       usecase.NewLoadHistoryUseCase(repo, cache),
		markReadUC:      usecase.NewMarkReadUseCase(repo),
		avatarUC:        usecase.NewUpdateAvatarUseCase(store, users),
		inflightTimeout: 5 * time.Second,
	}
}

type inboundFrame struct {
	Type          string `json:"type"`
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
	Recipient     string `json:"recipient,omitempty"`
	Text          string `json:"text,omitempty"`
	Filename      string `json:"filename,omitempty"`
	MimeType      string `json:"mimeType,omitempty"`
	Data          string `json:"data,omitempty"`
	Room          string `json:"room,omitempty"`
	LastMessageID int64  `json:"lastMessageId,omitempty"`
	AvatarData    string `json:"avatarData,omitempty"`
}

type loginAckFrame struct {
	Type              string            `json:"type"`
	Success           bool              `json:"success"`
	Error             string            `json:"error,omitempty"`
	CurrentUser       string            `json:"currentUser,omitempty"`
	CurrentUserAvatar string            `json:"currentUserAvatar,omitempty"`
	AllUsers          []string          `json:"allUsers,omitempty"`
	Statuses          map[string]bool   `json:"statuses,omitempty"`
	Avatars           map[string]string `json:"avatars,omitempty"`
}

type statusesFrame struct {
	Type     string          `json:"type"`
	Statuses map[string]bool `json:"statuses"`
}

type historyFrame struct {
	Type      string         `json:"type"`
	History   []chat.Message `json:"history"`
	Recipient string         `json:"recipient"`
}

type messageFrame struct {
	Type    string       `json:"type"`
	Message chat.Message `json:"message"`
}

type readFrame struct {
	Type          string `json:"type"`
	Room          string `json:"room"`
	LastMessageID int64  `json:"lastMessageId"`
	Recipient     string `json:"recipient,omitempty"`
}

type avatarsFrame struct {
	Type    string            `json:"type"`
	Avatars map[string]string `json:"avatars"`
}

type profileAckFrame struct {
	Type      string            `json:"type"`
	Success   bool              `json:"success"`
	AvatarURL string            `json:"avatarUrl,omitempty"`
	Avatars   map[string]string `json:"avatars,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Handle upgrades the HTTP connection and processes frames until the client
// disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(ws)
		ctl.router.Attach(conn)
		defer func() {
			loggedIn := conn.Username != ""
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			if loggedIn {
				ctl.broadcastStatuses()
			}
		}()

		ws.SetReadLimit(maxFrameSize)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		// Per-connection protocol state: Anonymous until login succeeds,
		// InRoom once a room and peer are set (always together).
		var (
			currentUser string
			currentRoom string
			currentPeer string
		)

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				continue
			}

			switch frame.Type {
			case "login":
				if currentUser != "" {
					continue
				}
				user, ok := ctl.users.Verify(frame.Username, frame.Password)
				if !ok {
					ctl.send(conn, loginAckFrame{Type: "login ack", Error: loginDeniedMessage})
					continue
				}
				currentUser = user.Username
				conn.Username = currentUser
				ctl.router.Bind(conn)
				statuses := ctl.broadcastStatuses()
				ctl.send(conn, loginAckFrame{
					Type:              "login ack",
					Success:           true,
					CurrentUser:       currentUser,
					CurrentUserAvatar: user.Avatar,
					AllUsers:          ctl.users.Usernames(),
					Statuses:          statuses,
					Avatars:           ctl.users.Avatars(),
				})

			case "join room":
				if currentUser == "" || frame.Recipient == "" {
					continue
				}
				room := chat.RoomID(currentUser, frame.Recipient)
				currentRoom = room
				currentPeer = frame.Recipient
				ctl.router.Join(room, conn)

				ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
				history := ctl.historyUC.Execute(ctx, room, currentUser)
				cancel()

				ctl.send(conn, historyFrame{Type: "load history", History: history, Recipient: frame.Recipient})

				// When the backlog ends with the peer's message, hand the
				// reader a receipt hint so the client acknowledges it
				// immediately.
				if n := len(history); n > 0 && history[n-1].Sender != currentUser {
					last := history[n-1]
					ctl.send(conn, readFrame{Type: "message read", Room: room, LastMessageID: last.ID, Recipient: last.Sender})
				}

			case "private message":
				if currentUser == "" || currentRoom == "" || currentPeer == "" || strings.TrimSpace(frame.Text) == "" {
					continue
				}
				ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
				msg, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
					Sender:    currentUser,
					Recipient: currentPeer,
					Room:      currentRoom,
					Text:      frame.Text,
				})
				cancel()
				if err != nil {
					// An unsaved message is never fanned out.
					slog.Error("message append failed", "room", currentRoom, "error", err)
					continue
				}
				ctl.broadcastRoom(currentRoom, messageFrame{Type: "private message", Message: *msg})

			case "file upload":
				if currentUser == "" || currentRoom == "" || frame.Recipient == "" || frame.Data == "" {
					continue
				}
				ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
				msg, err := ctl.sendFileUC.Execute(ctx, usecase.SendFileInput{
					Sender:    currentUser,
					Recipient: frame.Recipient,
					Room:      currentRoom,
					Filename:  frame.Filename,
					MimeType:  frame.MimeType,
					Data:      frame.Data,
				})
				cancel()
				if err != nil {
					if errors.Is(err, usecase.ErrMediaStore) {
						ctl.send(conn, errorFrame{Type: "error", Code: "file_save_failed", Error: "could not store the uploaded file"})
					} else {
						slog.Error("file message append failed", "room", currentRoom, "error", err)
					}
					continue
				}
				ctl.broadcastRoom(currentRoom, messageFrame{Type: "private message", Message: *msg})

			case "message read":
				if frame.Room == "" {
					continue
				}
				ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
				err := ctl.markReadUC.Execute(ctx, frame.Room, frame.LastMessageID, currentUser)
				cancel()
				if err != nil {
					// Do not acknowledge a cursor position that was not persisted.
					slog.Warn("read cursor update failed", "room", frame.Room, "error", err)
					continue
				}
				ctl.broadcastRoom(frame.Room, readFrame{Type: "message read ack", Room: frame.Room, LastMessageID: frame.LastMessageID})

			case "update profile":
				if currentUser == "" || frame.AvatarData == "" {
					continue
				}
				url, avatars, err := ctl.avatarUC.Execute(currentUser, frame.AvatarData)
				if err != nil {
					ctl.send(conn, profileAckFrame{Type: "profile ack", Error: "could not save avatar"})
					continue
				}
				ctl.broadcastAll(avatarsFrame{Type: "avatar updated", Avatars: avatars})
				ctl.send(conn, profileAckFrame{Type: "profile ack", Success: true, AvatarURL: url, Avatars: avatars})

			default:
				// Unknown frame types are dropped.
			}
		}
	}
}

// broadcastStatuses pushes the full presence map to every connection and
// returns it for reuse in the login ack.
func (ctl *ChatSocketController) broadcastStatuses() map[string]bool {
	statuses := make(map[string]bool)
	for _, name := range ctl.users.Usernames() {
		statuses[name] = ctl.router.Online(name)
	}
	ctl.broadcastAll(statusesFrame{Type: "update statuses", Statuses: statuses})
	return statuses
}

func (ctl *ChatSocketController) send(conn *realtime.Connection, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = conn.Send(payload)
}

func (ctl *ChatSocketController) broadcastRoom(room string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctl.router.Broadcast(room, payload)
}

func (ctl *ChatSocketController) broadcastAll(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctl.router.BroadcastAll(payload)
}
