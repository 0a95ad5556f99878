package dto

// GenerateQuestionsRequest POST /api/v1/ai/generate-questions
type GenerateQuestionsRequest struct {
	Paragraph string `json:"paragraph"`
}

// SummarizeRequest POST /api/v1/ai/summarize
type SummarizeRequest struct {
	Text string `json:"text"`
}

// AnswerQuestionRequest POST /api/v1/ai/answer-question
type AnswerQuestionRequest struct {
	Context  string `json:"context"`
	Question string `json:"question"`
}

// StudyPlanRequest POST /api/v1/ai/generate-study-plan
type StudyPlanRequest struct {
	Syllabus  string `json:"syllabus"`
	Topics    string `json:"topics"`
	StartDate string `json:"startDate"`
	Deadline  string `json:"deadline"`
}

type QuestionsResponse struct {
	Questions []string     `json:"questions"`
	Quota     *QuotaStatus `json:"quota,omitempty"`
}

type SummaryResponse struct {
	Summary string       `json:"summary"`
	Quota   *QuotaStatus `json:"quota,omitempty"`
}

type AnswerResponse struct {
	Answer string       `json:"answer"`
	Quota  *QuotaStatus `json:"quota,omitempty"`
}

type StudyPlanResponse struct {
	StudyPlan string       `json:"studyPlan"`
	Quota     *QuotaStatus `json:"quota,omitempty"`
}
