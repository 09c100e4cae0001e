package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/util"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
)

// CompletionClient is the one capability MentorService needs from the
// generation provider.
type CompletionClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const mentorSystemPrompt = `You are an elite AI study mentor and curriculum designer.
You are strict but supportive, concise and outcome-oriented, and you enforce daily study habits.
Curricula you design progress from fundamentals to mastery; every lesson builds on the previous one.`

// MentorService wraps the generation provider behind typed operations. Every
// operation either returns a fully-populated result with ok=true, or ok=false
// when the provider is unreachable, times out, or returns unusable output.
// Provider problems never escape this boundary as errors; each caller has its
// own deterministic fallback.
type MentorService struct {
	ai CompletionClient
}

func NewMentorService(ai CompletionClient) *MentorService {
	return &MentorService{ai: ai}
}

func (s *MentorService) complete(ctx context.Context, operation, prompt string) (string, bool) {
	text, err := s.ai.Complete(ctx, mentorSystemPrompt, prompt)
	if err != nil {
		logger.Log.Warn("generation provider unavailable",
			zap.String("operation", operation),
			zap.Error(err))
		return "", false
	}
	return text, true
}

// LevelAssessment is the onboarding verdict for one subject.
type LevelAssessment struct {
	Level   model.ProficiencyLevel `json:"level"`
	Message string                 `json:"message"`
}

func (s *MentorService) DetectLevel(ctx context.Context, subject, examOrSkill string, dailyMinutes int, targetDate time.Time) (*LevelAssessment, bool) {
	prompt := fmt.Sprintf(`The student wants to study '%s' for '%s'.
They can commit %d minutes daily until %s.

1. Estimate their starting level (Beginner, Intermediate, Advanced); assign 'Beginner' if unsure.
2. Write a short, punchy confirmation message welcoming them to the grind.

Respond in pure JSON format:
{
  "level": "Beginner|Intermediate|Advanced",
  "message": "Short encouragement string"
}`, subject, examOrSkill, dailyMinutes, targetDate.Format("2006-01-02"))

	text, ok := s.complete(ctx, "detect_level", prompt)
	if !ok {
		return nil, false
	}

	var result LevelAssessment
	if err := util.ExtractJSON(text, &result); err != nil {
		logger.Log.Warn("level detection returned unusable output", zap.Error(err))
		return nil, false
	}

	switch result.Level {
	case model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced:
	default:
		result.Level = model.LevelBeginner
	}
	if result.Message == "" {
		return nil, false
	}
	return &result, true
}

// Curriculum is the phase/module/task tree the roadmap engine persists.
type Curriculum struct {
	Title  string            `json:"title"`
	Phases []CurriculumPhase `json:"phases"`
}

type CurriculumPhase struct {
	Name    string             `json:"name"`
	Modules []CurriculumModule `json:"modules"`
}

type CurriculumModule struct {
	Name  string           `json:"name"`
	Tasks []CurriculumTask `json:"tasks"`
}

type CurriculumTask struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	EstimatedTime     int    `json:"estimated_time"`
	OutputDeliverable string `json:"output_deliverable"`
}

func (s *MentorService) GenerateCurriculum(ctx context.Context, goal *model.Goal) (*Curriculum, bool) {
	prompt := fmt.Sprintf(`Create a detailed, professional learning roadmap for a student.

Student Profile:
- Subject: %s
- Current Level: %s
- Target Goal: %s
- Daily Commitment: %d minutes
- Target Date: %s
- Learning Style Preference: %s

Requirements:
1. Structure: phases (e.g. Fundamentals) -> modules (e.g. Basics of Syntax) -> tasks (specific lessons).
2. Sequence tasks from absolute basics to advanced topics.
3. Each task needs a title, description, estimated time in minutes, and an output_deliverable (what to build or write).
4. Total task time should roughly fit the days remaining until the target date at the daily commitment.

RESPOND ONLY IN PURE JSON:
{
  "title": "...",
  "phases": [
    {"name": "...", "modules": [
      {"name": "...", "tasks": [
        {"title": "...", "description": "...", "estimated_time": 45, "output_deliverable": "..."}
      ]}
    ]}
  ]
}`, goal.Subject, goal.DetectedLevel, goal.TargetGoal, goal.DailyTimeMinutes,
		goal.TargetDate.Format("2006-01-02"), goal.LearningStyle)

	text, ok := s.complete(ctx, "generate_curriculum", prompt)
	if !ok {
		return nil, false
	}

	var result Curriculum
	if err := util.ExtractJSON(text, &result); err != nil {
		logger.Log.Warn("curriculum generation returned unusable output", zap.Error(err))
		return nil, false
	}

	// A tree without a single task is semantically empty output.
	if countCurriculumTasks(&result) == 0 {
		logger.Log.Warn("curriculum generation returned an empty tree")
		return nil, false
	}
	return &result, true
}

func countCurriculumTasks(c *Curriculum) int {
	n := 0
	for _, phase := range c.Phases {
		for _, mod := range phase.Modules {
			n += len(mod.Tasks)
		}
	}
	return n
}

// CuratedResource is one non-video supplement proposed by the mentor.
type CuratedResource struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Platform     string `json:"platform"`
	ResourceType string `json:"resource_type"`
	Rationale    string `json:"rationale"`
}

// CurateArticles requests count non-video resources from trusted reference
// platforms, explicitly excluding YouTube since video slots are filled by the
// search provider.
func (s *MentorService) CurateArticles(ctx context.Context, subject, topic string, level model.ProficiencyLevel, goalContext string, count int) ([]CuratedResource, bool) {
	if count <= 0 {
		return nil, true
	}

	prompt := fmt.Sprintf(`You are an expert educational researcher. Find %d high-quality, free NON-YOUTUBE resources for a student.

Student Profile:
- Subject: %s
- Topic: %s
- Level: %s
- Overall Goal: %s

Requirements:
1. NO YOUTUBE LINKS - videos are handled separately
2. Only top-tier educators or official sources (MDN, GitHub, Dev.to, official docs, freeCodeCamp, ...)
3. Realistic URLs that follow standard formats
4. Respond ONLY with a pure JSON array:
[
  {"title": "...", "url": "https://...", "platform": "...", "resource_type": "article|docs|interactive", "rationale": "one line"}
]`, count, subject, topic, level, goalContext)

	text, ok := s.complete(ctx, "curate_articles", prompt)
	if !ok {
		return nil, false
	}

	var resources []CuratedResource
	if err := util.ExtractJSON(text, &resources); err != nil {
		logger.Log.Warn("resource curation returned unusable output", zap.Error(err))
		return nil, false
	}

	kept := resources[:0]
	for _, res := range resources {
		if res.Title == "" || res.URL == "" {
			continue
		}
		kept = append(kept, res)
	}
	if len(kept) > count {
		kept = kept[:count]
	}
	return kept, true
}

// BuildTaskDescription turns a roadmap task title plus its resolved resources
// into a step-by-step daily assignment. Short time budgets get a narrow,
// micro-scoped framing; long ones a deep dive.
func (s *MentorService) BuildTaskDescription(ctx context.Context, topic, subject string, resources []model.TaskResource, level model.ProficiencyLevel, timeMinutes int) (string, bool) {
	timeGuidance := "Standard lesson"
	switch {
	case timeMinutes <= 30:
		timeGuidance = "CONCISE, FOCUSED sub-topic (micro-learning)"
	case timeMinutes >= 90:
		timeGuidance = "DEEP DIVE, COMPREHENSIVE coverage (intensive)"
	}

	var resLines []string
	for _, r := range resources {
		resLines = append(resLines, fmt.Sprintf("- %s (%s): %s", r.Title, r.Platform, r.URL))
	}
	resText := "Free web resources"
	if len(resLines) > 0 {
		resText = strings.Join(resLines, "\n")
	}

	prompt := fmt.Sprintf(`Topic: %s
Subject: %s
Student Level: %s
Time: %d minutes (%s)
Resources:
%s

Create a clear, actionable study task for this student.

Respond in pure JSON:
{"description": "Step-by-step guide..."}`, topic, subject, level, timeMinutes, timeGuidance, resText)

	text, ok := s.complete(ctx, "build_task_description", prompt)
	if !ok {
		return "", false
	}

	var result struct {
		Description string `json:"description"`
	}
	if err := util.ExtractJSON(text, &result); err != nil || result.Description == "" {
		logger.Log.Warn("task description generation returned unusable output")
		return "", false
	}
	return result.Description, true
}

// Evaluation is the verdict on a submission.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// ImageSubmissionMarker stands in for submission text when the learner
// uploaded a screenshot instead of writing.
const ImageSubmissionMarker = "Image submitted"

func (s *MentorService) EvaluateSubmission(ctx context.Context, taskDescription, submissionText string, level model.ProficiencyLevel) (*Evaluation, bool) {
	prompt := fmt.Sprintf(`Task: %s
User Level: %s
User Submission: "%s"

Evaluate the submission acting as a supportive but strict mentor.

CRITERIA:
1. Relevance: did they address the task?
2. Effort: does the submission show genuine effort?
3. Level-appropriateness: encourage beginners, expect practical application from intermediates, be strict with advanced students.

If the submission is "%s" (the user uploaded a screenshot you cannot see):
- Assume they did the work.
- Give a high score (85-95) for showing up.
- Ask a follow-up question in the feedback to verify their understanding.

Respond in pure JSON format:
{"score": <integer_0_to_100>, "feedback": "constructive feedback"}`,
		taskDescription, level, submissionText, ImageSubmissionMarker)

	text, ok := s.complete(ctx, "evaluate_submission", prompt)
	if !ok {
		return nil, false
	}

	var result Evaluation
	if err := util.ExtractJSON(text, &result); err != nil || result.Feedback == "" {
		logger.Log.Warn("submission evaluation returned unusable output")
		return nil, false
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}

	// The provider cannot inspect a screenshot, so its verdict on one is
	// constrained to the agreed band regardless of what it answered.
	if submissionText == ImageSubmissionMarker {
		if result.Score < 85 {
			result.Score = 85
		}
		if result.Score > 95 {
			result.Score = 95
		}
		if !strings.Contains(result.Feedback, "?") {
			result.Feedback += " Quick check: can you describe in one sentence what your screenshot shows?"
		}
	}

	return &result, true
}

// SummarizeWeek produces the mentor's narrative paragraph; raw text, not JSON.
func (s *MentorService) SummarizeWeek(ctx context.Context, completedCount int, avgScore float64, dayCount int, level model.ProficiencyLevel, topics string) (string, bool) {
	if topics == "" {
		topics = "None"
	}
	prompt := fmt.Sprintf(`Weekly check-in:
- Level: %s
- Tasks Completed: %d over %d days
- Average Score: %.1f
- Topics Covered: %s

Write a short, powerful paragraph summarizing their performance.
Acknowledge their level, mention the specific topics covered, be strict about missed tasks but praise consistency, and close with brief advice for next week.`,
		level, completedCount, dayCount, avgScore, topics)

	text, ok := s.complete(ctx, "summarize_week", prompt)
	if !ok || strings.TrimSpace(text) == "" {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// ChatAction is an optional structured side effect the mentor may request.
type ChatAction struct {
	Type    string `json:"type"`
	NewLink string `json:"new_link"`
	Reason  string `json:"reason"`
}

const ChatActionUpdateResource = "update_resource"

type ChatReply struct {
	Answer string      `json:"answer"`
	Action *ChatAction `json:"action"`
}

func (s *MentorService) AnswerQuestion(ctx context.Context, question, goalContext, taskContext string) (*ChatReply, bool) {
	var contextStr string
	if goalContext != "" {
		contextStr = fmt.Sprintf("The student is currently working on: %s.", goalContext)
	}
	if taskContext != "" {
		contextStr += " Specific task details: " + taskContext
	}

	prompt := fmt.Sprintf(`%s

Student Question: "%s"

Instructions:
1. Provide a helpful, concise, and encouraging answer.
2. If the user asks to change a resource or find a better one, request an ACTION.
3. Supported actions: {"type": "update_resource", "new_link": "https://...", "reason": "..."}

YOU MUST RESPOND IN PURE JSON FORMAT:
{"answer": "your mentor response", "action": null or {"type": "update_resource", "new_link": "...", "reason": "..."}}`,
		contextStr, question)

	text, ok := s.complete(ctx, "answer_question", prompt)
	if !ok {
		return nil, false
	}

	var result ChatReply
	if err := util.ExtractJSON(text, &result); err != nil || result.Answer == "" {
		logger.Log.Warn("chat answer returned unusable output")
		return nil, false
	}
	if result.Action != nil && (result.Action.Type != ChatActionUpdateResource || result.Action.NewLink == "") {
		result.Action = nil
	}
	return &result, true
}
