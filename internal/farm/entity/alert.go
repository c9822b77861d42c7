package entity

import (
	"time"
)

// AlertLevel / 收件方 / 渠道
const (
	AlertLevelInfo    = "INFO"
	AlertLevelWarning = "WARNING"

	AlertRecipientWorkers  = "WORKERS"
	AlertRecipientVillageC = "VILLAGE_C"

	AlertChannelPush  = "PUSH"
	AlertChannelEmail = "EMAIL"
)

// Alert 待投递提醒。持久化 outbox：UI 启动时轮询未投递项，
// 确认后标记 Delivered，替代原实现中的全局内存侧信道。
type Alert struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BatchID   string    `json:"batch_id" gorm:"size:32;not null;index"`
	Level     string    `json:"level" gorm:"size:12;not null"`
	Recipient string    `json:"recipient" gorm:"size:16;not null"`
	Channel   string    `json:"channel" gorm:"size:12;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Delivered bool      `json:"delivered" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// ActivityLog 操作日志
type ActivityLog struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Actor     string    `json:"actor" gorm:"size:64;not null"`
	Action    string    `json:"action" gorm:"size:48;not null;index"`
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
