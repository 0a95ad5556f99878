package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/zubari_server/internal/api/middleware"
	"github.com/qs3c/zubari_server/internal/model"
	"github.com/qs3c/zubari_server/internal/model/dto"
	"github.com/qs3c/zubari_server/internal/pkg/ai"
	"github.com/qs3c/zubari_server/internal/pkg/response"
	"github.com/qs3c/zubari_server/internal/service"
)

// AIHandler exposes the billable AI operations. Every call goes through the
// quota gate in AIService.
type AIHandler struct {
	aiService *service.AIService
}

func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// gate binds the request body into req, runs kind through the quota gate and
// returns the result, or writes the error envelope and returns nil.
func (h *AIHandler) gate(c *gin.Context, kind model.RequestKind, req interface{}, payload func() ai.Payload) *service.GateResult {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return nil
	}

	if err := c.ShouldBindJSON(req); err != nil {
		response.ParamError(c, err.Error())
		return nil
	}

	result, err := h.aiService.Handle(c.Request.Context(), userID, kind, payload())
	if err != nil {
		handleServiceError(c, err)
		return nil
	}
	return result
}

// GenerateQuestions
// POST /api/v1/ai/generate-questions
func (h *AIHandler) GenerateQuestions(c *gin.Context) {
	var req dto.GenerateQuestionsRequest
	result := h.gate(c, model.RequestQuestionGeneration, &req, func() ai.Payload {
		return ai.Payload{Paragraph: req.Paragraph}
	})
	if result == nil {
		return
	}

	response.Success(c, &dto.QuestionsResponse{
		Questions: result.Questions,
		Quota:     &result.Quota,
	})
}

// Summarize
// POST /api/v1/ai/summarize
func (h *AIHandler) Summarize(c *gin.Context) {
	var req dto.SummarizeRequest
	result := h.gate(c, model.RequestSummarization, &req, func() ai.Payload {
		return ai.Payload{Text: req.Text}
	})
	if result == nil {
		return
	}

	response.Success(c, &dto.SummaryResponse{
		Summary: result.Summary,
		Quota:   &result.Quota,
	})
}

// AnswerQuestion
// POST /api/v1/ai/answer-question
func (h *AIHandler) AnswerQuestion(c *gin.Context) {
	var req dto.AnswerQuestionRequest
	result := h.gate(c, model.RequestQuestionAnswering, &req, func() ai.Payload {
		return ai.Payload{Context: req.Context, Question: req.Question}
	})
	if result == nil {
		return
	}

	response.Success(c, &dto.AnswerResponse{
		Answer: result.Answer,
		Quota:  &result.Quota,
	})
}

// GenerateStudyPlan
// POST /api/v1/ai/generate-study-plan
func (h *AIHandler) GenerateStudyPlan(c *gin.Context) {
	var req dto.StudyPlanRequest
	result := h.gate(c, model.RequestStudyPlanGeneration, &req, func() ai.Payload {
		return ai.Payload{
			Syllabus:  req.Syllabus,
			Topics:    req.Topics,
			StartDate: req.StartDate,
			Deadline:  req.Deadline,
		}
	})
	if result == nil {
		return
	}

	response.Success(c, &dto.StudyPlanResponse{
		StudyPlan: result.StudyPlan,
		Quota:     &result.Quota,
	})
}
