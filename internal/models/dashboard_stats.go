package models

type DashboardStats struct {
	QuestionsToday      int64            `json:"questionsToday"`
	ConsultationsByTier map[string]int64 `json:"consultationsByTier"`
	PendingReviews      int64            `json:"pendingReviews"`
	RateLimitedToday    int64            `json:"rateLimitedToday"`
	RecentConsultations []Consultation   `json:"recentConsultations"`
}
