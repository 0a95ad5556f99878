package model

import (
	"time"
)

// RequestKind identifies a billable AI operation.
type RequestKind string

const (
	RequestQuestionGeneration  RequestKind = "question_generation"
	RequestSummarization       RequestKind = "summarization"
	RequestQuestionAnswering   RequestKind = "question_answering"
	RequestStudyPlanGeneration RequestKind = "study_plan_generation"
)

// Valid reports whether k is one of the known request kinds.
func (k RequestKind) Valid() bool {
	switch k {
	case RequestQuestionGeneration, RequestSummarization, RequestQuestionAnswering, RequestStudyPlanGeneration:
		return true
	}
	return false
}

// AIRequest is an append-only usage log entry.
type AIRequest struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	UserID      int64       `gorm:"not null;index" json:"user_id"`
	RequestType RequestKind `gorm:"size:40;not null" json:"request_type"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AIRequest) TableName() string {
	return "ai_requests"
}
