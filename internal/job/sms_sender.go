package job

import (
	"context"
	"log"
	"time"

	"armenu/internal/config"
	"armenu/internal/gateway/twilio"
	"armenu/internal/model"
	"armenu/internal/repository"

	"gorm.io/gorm"
)

// SmsSender 把短信队列里的待发消息投递到短信网关
//
// 短信是尽力而为的副作用：发送失败只影响这条消息的状态，
// 永远不会反过来影响订单。重试超限后标记 FAILED 留查
type SmsSender struct {
	db        *gorm.DB
	smsRepo   *repository.SmsRepository
	gateway   *twilio.Client
	cfg       *config.Config
	stopCh    chan struct{}
	interval  time.Duration
	batchSize int
}

func NewSmsSender(db *gorm.DB, cfg *config.Config, gateway *twilio.Client) *SmsSender {
	return &SmsSender{
		db:        db,
		smsRepo:   repository.NewSmsRepository(db),
		gateway:   gateway,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		interval:  time.Second,
		batchSize: 50,
	}
}

func (s *SmsSender) Start(ctx context.Context) {
	log.Println("[SmsSender] 短信发送任务启动")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SmsSender] 收到停止信号，任务退出")
			return
		case <-s.stopCh:
			log.Println("[SmsSender] 任务停止")
			return
		case <-ticker.C:
			s.ProcessPendingMessages(ctx)
		}
	}
}

func (s *SmsSender) Stop() {
	close(s.stopCh)
}

// ProcessPendingMessages 处理一批待发短信
func (s *SmsSender) ProcessPendingMessages(ctx context.Context) {
	messages, err := s.smsRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		log.Printf("[SmsSender] 查询待发短信失败: %v", err)
		return
	}

	if len(messages) == 0 {
		return
	}

	for _, msg := range messages {
		s.sendMessage(ctx, msg)
	}
}

func (s *SmsSender) sendMessage(ctx context.Context, msg *model.SmsMessage) {
	sid, err := s.gateway.SendSMS(ctx, msg.Phone, msg.Body)

	if err == nil {
		if updateErr := s.smsRepo.MarkAsSent(ctx, msg.ID, sid); updateErr != nil {
			log.Printf("[SmsSender] 更新短信状态失败: id=%d, err=%v", msg.ID, updateErr)
		} else {
			log.Printf("[SmsSender] 短信发送成功: id=%d, orderNo=%s, sid=%s", msg.ID, msg.OrderNo, sid)
		}
		return
	}

	log.Printf("[SmsSender] 短信发送失败: id=%d, orderNo=%s, err=%v", msg.ID, msg.OrderNo, err)

	// MarkAsFailed 自带一次计数，和 IncrementRetryCount 二选一
	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.smsRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			log.Printf("[SmsSender] 标记短信失败状态失败: id=%d, err=%v", msg.ID, err)
		} else {
			log.Printf("[SmsSender] 短信超过最大重试次数，标记为失败: id=%d", msg.ID)
		}
		return
	}

	if err := s.smsRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		log.Printf("[SmsSender] 增加重试次数失败: id=%d, err=%v", msg.ID, err)
	}
}
