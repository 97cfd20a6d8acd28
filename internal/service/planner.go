package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/automessage"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/user"
	"github.com/ahmetcancakir06/nodelab-case/internal/metrics"
)

// 自动消息的固定内容池
var autoMessagePrompts = []string{
	"Hey! Just checking in 👋",
	"Good morning! 🌞",
	"Hope you're having a great day!",
	"Wanna catch up later?",
	"Time to code and chill 😎",
	"What’s up? How’s everything going?",
}

// Planner 周期性任务：把当前在线用户随机两两配对，
// 为每一对生成一条稍后发送的待处理自动消息
type Planner struct {
	presence  Presence
	users     user.Repository
	autos     automessage.Repository
	sendDelay time.Duration
	rnd       *rand.Rand
	log       *zap.SugaredLogger
}

// NewPlanner 创建配对计划任务。rnd 为空时使用时间种子
func NewPlanner(presence Presence, users user.Repository, autos automessage.Repository, sendDelay time.Duration, rnd *rand.Rand, log *zap.SugaredLogger) *Planner {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{
		presence:  presence,
		users:     users,
		autos:     autos,
		sendDelay: sendDelay,
		rnd:       rnd,
		log:       log,
	}
}

// Run 执行一轮计划，返回创建的自动消息条数。
// 单对创建失败只记日志不中断；已创建的记录保留（按次至少一次，整轮不保证事务）
func (p *Planner) Run(ctx context.Context) (int, error) {
	ids, err := p.presence.Members(ctx)
	if err != nil {
		return 0, fmt.Errorf("read online users: %w", err)
	}

	users, err := p.users.ListByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load users: %w", err)
	}
	if len(users) < 2 {
		p.log.Infow("not enough online users to pair", "online", len(users))
		return 0, nil
	}

	// Fisher–Yates 洗牌，保证配对为均匀随机匹配
	for i := len(users) - 1; i > 0; i-- {
		j := p.rnd.Intn(i + 1)
		users[i], users[j] = users[j], users[i]
	}

	planned := 0
	// 连续两两配对，奇数时最后一个落单不生成消息
	for i := 0; i+1 < len(users); i += 2 {
		sender, receiver := users[i], users[i+1]
		m := &automessage.AutoMessage{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    autoMessagePrompts[p.rnd.Intn(len(autoMessagePrompts))],
			SendDate:   time.Now().Add(p.sendDelay),
			IsQueued:   false,
			IsSent:     false,
		}
		if err := p.autos.Create(ctx, m); err != nil {
			p.log.Errorw("failed to create auto message", "sender", sender.ID, "receiver", receiver.ID, "error", err)
			continue
		}
		planned++
	}

	metrics.AutoMessagesPlanned.Add(float64(planned))
	p.log.Infow("planned auto messages", "pairs", planned, "online", len(users))
	return planned, nil
}
