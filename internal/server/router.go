package server

import (
	"errors"

	"github.com/kataras/iris/v12"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmetcancakir06/nodelab-case/internal/config"
	"github.com/ahmetcancakir06/nodelab-case/internal/gateway"
	"github.com/ahmetcancakir06/nodelab-case/internal/middleware"
	"github.com/ahmetcancakir06/nodelab-case/internal/service"
)

// Deps 路由依赖
type Deps struct {
	Cfg     *config.Config
	UserSvc *service.UserService
	MsgSvc  *service.MessageService
	WS      *gateway.Handler
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRoutes 注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, d *Deps) {
	// 健康检查
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Prometheus 指标
	app.Get("/metrics", iris.FromStd(promhttp.Handler()))

	// websocket 握手
	app.Get("/ws", iris.FromStd(d.WS.ServeWS))

	api := app.Party("/api")
	api.Use(middleware.GeneralRateLimit())

	authParty := api.Party("/auth")

	authParty.Post("/register", func(ctx iris.Context) {
		var req registerRequest
		if err := ctx.ReadJSON(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
			ctx.StopWithJSON(400, iris.Map{"success": false, "message": "username, email and password required"})
			return
		}
		u, err := d.UserSvc.Register(ctx.Request().Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrEmailTaken) {
				ctx.StopWithJSON(400, iris.Map{"success": false, "message": "This email is already registered: " + req.Email})
				return
			}
			ctx.StopWithJSON(500, iris.Map{"success": false, "message": "An unexpected error occurred during registration."})
			return
		}
		ctx.JSON(iris.Map{"success": true, "data": iris.Map{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
		}})
	})

	authParty.Post("/login", middleware.LoginRateLimit(), func(ctx iris.Context) {
		var req loginRequest
		if err := ctx.ReadJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			ctx.StopWithJSON(400, iris.Map{"success": false, "message": "Username and Password required"})
			return
		}
		token, u, err := d.UserSvc.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				ctx.StopWithJSON(401, iris.Map{"success": false, "message": "Invalid Username or Password"})
				return
			}
			ctx.StopWithJSON(500, iris.Map{"success": false, "message": "An unexpected error occurred during login."})
			return
		}
		ctx.JSON(iris.Map{"success": true, "data": iris.Map{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"token":    token,
		}})
	})

	secured := api.Party("/")
	secured.Use(middleware.JWTAuth(&d.Cfg.JWT))

	// 用户列表（带在线状态）
	secured.Get("/users", func(ctx iris.Context) {
		users, err := d.UserSvc.ListWithPresence(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"success": false, "message": "Users get error"})
			return
		}
		ctx.JSON(iris.Map{"success": true, "data": users})
	})

	// 与某个用户的会话历史，读取同时把对方发来的未读置为已读
	secured.Get("/message/{userId:int64}", func(ctx iris.Context) {
		peerID, err := ctx.Params().GetInt64("userId")
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"success": false, "message": "invalid user id"})
			return
		}
		me := middleware.UserID(ctx)
		list, err := d.MsgSvc.Conversation(ctx.Request().Context(), me, peerID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"success": false, "message": "Error fetching messages"})
			return
		}
		ctx.JSON(iris.Map{"success": true, "data": list})
	})
}
