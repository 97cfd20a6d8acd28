package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ahmetcancakir06/nodelab-case/internal/auth"
	"github.com/ahmetcancakir06/nodelab-case/internal/config"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/user"
)

// Handler websocket 握手入口。握手阶段完成鉴权，失败直接拒绝升级
type Handler struct {
	hub      *Hub
	users    user.Repository
	jwtCfg   *config.JWTConfig
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

// NewHandler 创建握手处理器
func NewHandler(hub *Hub, users user.Repository, jwtCfg *config.JWTConfig, log *zap.SugaredLogger) *Handler {
	return &Handler{
		hub:    hub,
		users:  users,
		jwtCfg: jwtCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// ServeWS 处理 /ws 升级请求。token 从 query 或 Authorization 头获取
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "token missing")
		return
	}

	claims, err := auth.ParseToken(h.jwtCfg, token)
	if err != nil {
		h.log.Errorw("websocket auth failed", "error", err)
		writeError(w, http.StatusForbidden, "invalid token")
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.log.Errorw("websocket user not found", "user", claims.UserID)
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn, u.ID, u.Username)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"code":    code,
		"message": msg,
	})
}
