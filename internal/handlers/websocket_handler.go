package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bezs/internal/middleware"
	"bezs/internal/models"
	"bezs/internal/services"
	apperr "bezs/pkg/errors"
	"bezs/pkg/jwt"
	"bezs/pkg/logger"
	"bezs/pkg/queue"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	maxRecentEvents  = 100
	wsWriteTimeout   = 10 * time.Second
	wsPingInterval   = 60 * time.Second
	wsPongWait       = 300 * time.Second
	frameTypeEvent   = "event"
	frameTypeReady   = "subscribed"
	frameTypeBacklog = "backlog"
)

// EventSource 审计事件源，由 Redis 队列实现
type EventSource interface {
	Recent(ctx context.Context, n int64) ([]*queue.EventMessage, error)
	Subscribe(ctx context.Context) *redis.PubSub
}

// EventFrame 推送给客户端的消息帧
type EventFrame struct {
	Type  string              `json:"type"`
	Event *queue.EventMessage `json:"event,omitempty"`
}

// EventStreamHandler 审计事件：最近事件查询和 WebSocket 实时推送，仅平台管理员可用
type EventStreamHandler struct {
	upgrader   websocket.Upgrader
	events     EventSource
	users      middleware.UserFinder
	guard      *services.AccessGuard
	jwtManager *jwt.JWTManager
	log        *logrus.Entry
}

// NewEventStreamHandler 创建事件推送处理器，allowedOrigins 与 CORS 配置一致
func NewEventStreamHandler(events EventSource, users middleware.UserFinder, guard *services.AccessGuard, jwtManager *jwt.JWTManager, allowedOrigins []string) *EventStreamHandler {
	log := logger.WithModule("events")
	return &EventStreamHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// 同源请求不带 Origin
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}
				log.Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 32,
		},
		events:     events,
		users:      users,
		guard:      guard,
		jwtManager: jwtManager,
		log:        log,
	}
}

// Recent 最近的审计事件，新事件在前
func (h *EventStreamHandler) Recent(c *gin.Context) {
	if err := h.guard.RequireAdmin(middleware.CallerFromContext(c)); err != nil {
		response.FromError(c, err)
		return
	}

	limit, err := parseLimit(c.DefaultQuery("limit", "20"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	events, err := h.events.Recent(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, apperr.Internal("读取审计事件失败", err))
		return
	}
	if events == nil {
		events = []*queue.EventMessage{}
	}
	response.Success(c, events)
}

// Stream 升级为 WebSocket 并转发审计事件
// 浏览器无法为 WebSocket 设置请求头，令牌通过 token 查询参数传入
func (h *EventStreamHandler) Stream(c *gin.Context) {
	caller, err := h.authenticate(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.guard.RequireAdmin(caller); err != nil {
		c.Set(response.AuthenticatedKey, true)
		response.FromError(c, err)
		return
	}

	backlog, err := parseLimit(c.DefaultQuery("recent", "0"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 先确认订阅成功再升级，保证 subscribed 帧之后的事件不会丢失
	pubsub := h.events.Subscribe(ctx)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		response.FromError(c, apperr.Internal("订阅审计事件失败", err))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.log.WithFields(logrus.Fields{
		"user_id":     caller.UserID,
		"remote_addr": c.ClientIP(),
	}).Info("Audit event stream connected")

	go h.readPump(conn, cancel)

	if backlog > 0 {
		events, err := h.events.Recent(ctx, backlog)
		if err != nil {
			h.log.WithError(err).Warn("Failed to load recent events")
		}
		for _, event := range events {
			if err := writeFrame(conn, EventFrame{Type: frameTypeBacklog, Event: event}); err != nil {
				return
			}
		}
	}
	if err := writeFrame(conn, EventFrame{Type: frameTypeReady}); err != nil {
		return
	}

	ch := pubsub.Channel()
	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.WithError(err).Debug("Failed to send ping")
				return
			}

		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event queue.EventMessage
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.WithError(err).Error("Failed to parse audit event")
				continue
			}
			if err := writeFrame(conn, EventFrame{Type: frameTypeEvent, Event: &event}); err != nil {
				h.log.WithError(err).Debug("Failed to send event to client")
				return
			}
		}
	}
}

// authenticate 校验查询参数中的令牌并重新读取用户
func (h *EventStreamHandler) authenticate(c *gin.Context) (services.Caller, error) {
	token := c.Query("token")
	if token == "" {
		return services.Anonymous(), apperr.Unauthorized("缺少认证令牌")
	}
	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		return services.Anonymous(), apperr.Unauthorized("无效的令牌")
	}
	user, err := h.users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return services.Anonymous(), apperr.Unauthorized("用户不存在")
		}
		return services.Anonymous(), apperr.Internal("读取用户失败", err)
	}
	if user.Status != models.UserStatusActive {
		return services.Anonymous(), apperr.Unauthorized("用户已被禁用")
	}
	return services.NewCaller(user), nil
}

// readPump 处理客户端的 pong 和关闭帧
func (h *EventStreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Warn("WebSocket unexpected close")
			}
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame EventFrame) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(frame)
}

func parseLimit(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, apperr.Validation("数量必须为非负整数")
	}
	if n > maxRecentEvents {
		n = maxRecentEvents
	}
	return n, nil
}

// matchOrigin 支持精确匹配和 *.example.com 形式的通配
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}
	if !strings.HasPrefix(allowed, "*.") {
		return false
	}

	domain := allowed[2:]
	host := origin
	if idx := strings.Index(host, "://"); idx != -1 {
		host = host[idx+3:]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
