package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"study_mentor_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompletion struct {
	response string
	err      error
}

func (f *fakeCompletion) Complete(ctx context.Context, system, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestDetectLevelParsesFencedJSON(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: "Here you go:\n```json\n{\"level\": \"Intermediate\", \"message\": \"Welcome to the grind.\"}\n```",
	})

	result, ok := svc.DetectLevel(context.Background(), "Physics", "Final exam", 45, time.Now().AddDate(0, 2, 0))
	require.True(t, ok)
	assert.Equal(t, model.LevelIntermediate, result.Level)
	assert.Equal(t, "Welcome to the grind.", result.Message)
}

func TestDetectLevelUnknownLevelDefaultsToBeginner(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: `{"level": "Expert", "message": "Let's go."}`,
	})

	result, ok := svc.DetectLevel(context.Background(), "Physics", "", 30, time.Now())
	require.True(t, ok)
	assert.Equal(t, model.LevelBeginner, result.Level)
}

func TestDetectLevelProviderDown(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{err: errors.New("timeout")})

	_, ok := svc.DetectLevel(context.Background(), "Physics", "", 30, time.Now())
	assert.False(t, ok)
}

func TestDetectLevelEmptyMessageRejected(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{response: `{"level": "Beginner", "message": ""}`})

	_, ok := svc.DetectLevel(context.Background(), "Physics", "", 30, time.Now())
	assert.False(t, ok)
}

func TestGenerateCurriculumEmptyTreeRejected(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: `{"title": "Physics Plan", "phases": [{"name": "P1", "modules": []}]}`,
	})

	_, ok := svc.GenerateCurriculum(context.Background(), &model.Goal{Subject: "Physics"})
	assert.False(t, ok)
}

func TestGenerateCurriculumParsesTree(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: `{"title": "Physics Plan", "phases": [{"name": "Mechanics", "modules": [{"name": "Kinematics", "tasks": [{"title": "Motion", "description": "d", "estimated_time": 40, "output_deliverable": "notes"}]}]}]}`,
	})

	curriculum, ok := svc.GenerateCurriculum(context.Background(), &model.Goal{Subject: "Physics"})
	require.True(t, ok)
	assert.Equal(t, "Physics Plan", curriculum.Title)
	assert.Equal(t, 1, countCurriculumTasks(curriculum))
	assert.Equal(t, 40, curriculum.Phases[0].Modules[0].Tasks[0].EstimatedTime)
}

func TestCurateArticlesFiltersAndTruncates(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: `[
			{"title": "A", "url": "https://a.example", "platform": "MDN"},
			{"title": "", "url": "https://missing-title.example"},
			{"title": "No URL"},
			{"title": "B", "url": "https://b.example", "platform": "Dev.to"},
			{"title": "C", "url": "https://c.example", "platform": "Docs"}
		]`,
	})

	resources, ok := svc.CurateArticles(context.Background(), "Physics", "Waves", model.LevelBeginner, "", 2)
	require.True(t, ok)
	require.Len(t, resources, 2)
	assert.Equal(t, "A", resources[0].Title)
	assert.Equal(t, "B", resources[1].Title)
}

func TestEvaluateSubmissionClampsScore(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{response: `{"score": 140, "feedback": "Over the top."}`})

	eval, ok := svc.EvaluateSubmission(context.Background(), "task", "my work", model.LevelAdvanced)
	require.True(t, ok)
	assert.Equal(t, 100, eval.Score)
}

func TestEvaluateSubmissionImageMarkerBand(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{response: `{"score": 40, "feedback": "Nice screenshot."}`})

	eval, ok := svc.EvaluateSubmission(context.Background(), "task", ImageSubmissionMarker, model.LevelBeginner)
	require.True(t, ok)
	assert.GreaterOrEqual(t, eval.Score, 85)
	assert.LessOrEqual(t, eval.Score, 95)
	// Feedback without a question gets a verification prompt appended.
	assert.Contains(t, eval.Feedback, "?")
}

func TestEvaluateSubmissionImageMarkerKeepsQuestion(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{response: `{"score": 90, "feedback": "Looks done. What was the hardest step?"}`})

	eval, ok := svc.EvaluateSubmission(context.Background(), "task", ImageSubmissionMarker, model.LevelBeginner)
	require.True(t, ok)
	assert.Equal(t, 90, eval.Score)
	assert.Equal(t, "Looks done. What was the hardest step?", eval.Feedback)
}

func TestEvaluateSubmissionMissingFeedbackRejected(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{response: `{"score": 70, "feedback": ""}`})

	_, ok := svc.EvaluateSubmission(context.Background(), "task", "work", model.LevelBeginner)
	assert.False(t, ok)
}

func TestAnswerQuestionWithAction(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: `{"answer": "Try this instead.", "action": {"type": "update_resource", "new_link": "https://better.example", "reason": "dead link"}}`,
	})

	reply, ok := svc.AnswerQuestion(context.Background(), "this link is broken", "Physics", "")
	require.True(t, ok)
	assert.Equal(t, "Try this instead.", reply.Answer)
	require.NotNil(t, reply.Action)
	assert.Equal(t, ChatActionUpdateResource, reply.Action.Type)
	assert.Equal(t, "https://better.example", reply.Action.NewLink)
}

func TestAnswerQuestionDropsUnknownAction(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: `{"answer": "Sure.", "action": {"type": "delete_everything", "new_link": "https://x.example"}}`,
	})

	reply, ok := svc.AnswerQuestion(context.Background(), "q", "", "")
	require.True(t, ok)
	assert.Nil(t, reply.Action)
}

func TestAnswerQuestionDropsActionWithoutLink(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{
		response: `{"answer": "Sure.", "action": {"type": "update_resource", "new_link": ""}}`,
	})

	reply, ok := svc.AnswerQuestion(context.Background(), "q", "", "")
	require.True(t, ok)
	assert.Nil(t, reply.Action)
}

func TestSummarizeWeekPassesThroughText(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{response: "  Strong week. Keep at it.  "})

	summary, ok := svc.SummarizeWeek(context.Background(), 4, 82.5, 4, model.LevelIntermediate, "Kinematics, Waves")
	require.True(t, ok)
	assert.Equal(t, "Strong week. Keep at it.", summary)
}

func TestSummarizeWeekEmptyOutputRejected(t *testing.T) {
	svc := NewMentorService(&fakeCompletion{response: "   "})

	_, ok := svc.SummarizeWeek(context.Background(), 0, 0, 0, model.LevelBeginner, "")
	assert.False(t, ok)
}
