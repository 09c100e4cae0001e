package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

var testDBSeq int64

// newTestDB opens a named in-memory database so every pooled connection in a
// test sees the same schema, while tests stay isolated from each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Goal{},
		&model.Roadmap{},
		&model.RoadmapTask{},
		&model.DailyTask{},
		&model.TaskResource{},
		&model.Submission{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// dateStamp compares stored dates by calendar day; the driver may hand the
// value back in a different zone than it went in.
func dateStamp(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

func todayStamp() string {
	return dateStamp(time.Now())
}

func seedUserAndGoal(t *testing.T, db *gorm.DB) (*model.User, *model.Goal) {
	t.Helper()

	user := &model.User{Email: "learner@example.com", Password: "x", FullName: "Learner"}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	goal := &model.Goal{
		UserID:           user.ID,
		Subject:          "Physics",
		ExamOrSkill:      "Final exam",
		DailyTimeMinutes: 45,
		DetectedLevel:    model.LevelIntermediate,
	}
	if err := repository.NewGoalRepository(db).Create(goal); err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	return user, goal
}

func threeTaskCurriculum() *Curriculum {
	return &Curriculum{
		Title: "Physics Mastery",
		Phases: []CurriculumPhase{{
			Name: "Mechanics",
			Modules: []CurriculumModule{{
				Name: "Kinematics",
				Tasks: []CurriculumTask{
					{Title: "Motion in one dimension", Description: "Velocity and acceleration.", EstimatedTime: 40},
					{Title: "Projectile motion", Description: "2D kinematics.", EstimatedTime: 45},
				},
			}},
		}, {
			Name: "Waves",
			Modules: []CurriculumModule{{
				Name: "Oscillations",
				Tasks: []CurriculumTask{
					{Title: "Simple harmonic motion", Description: "Springs and pendulums.", EstimatedTime: 50},
				},
			}},
		}},
	}
}

// fakeMentor covers every mentor-facing interface the services consume.
type fakeMentor struct {
	failDescriptions bool
	failEvaluations  bool
	failSummaries    bool
	evalScore        int
	evalFeedback     string
	descriptionCalls int
	evaluationCalls  int
}

func (f *fakeMentor) BuildTaskDescription(ctx context.Context, topic, subject string, resources []model.TaskResource, level model.ProficiencyLevel, timeMinutes int) (string, bool) {
	f.descriptionCalls++
	if f.failDescriptions {
		return "", false
	}
	return fmt.Sprintf("Study %s for %d minutes.", topic, timeMinutes), true
}

func (f *fakeMentor) EvaluateSubmission(ctx context.Context, taskDescription, submissionText string, level model.ProficiencyLevel) (*Evaluation, bool) {
	f.evaluationCalls++
	if f.failEvaluations {
		return nil, false
	}
	score := f.evalScore
	if score == 0 {
		score = 80
	}
	feedback := f.evalFeedback
	if feedback == "" {
		feedback = "Solid work."
	}
	if submissionText == ImageSubmissionMarker {
		if score < 85 {
			score = 85
		}
		if score > 95 {
			score = 95
		}
	}
	return &Evaluation{Score: score, Feedback: feedback}, true
}

func (f *fakeMentor) SummarizeWeek(ctx context.Context, completedCount int, avgScore float64, dayCount int, level model.ProficiencyLevel, topics string) (string, bool) {
	if f.failSummaries {
		return "", false
	}
	return fmt.Sprintf("You finished %d tasks across %d days.", completedCount, dayCount), true
}

// fakeResolver returns a fixed number of deterministic resources.
type fakeResolver struct {
	count int
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, subject, topic string, level model.ProficiencyLevel, goalContext string, limit int) []model.TaskResource {
	f.calls++
	n := f.count
	if n > limit {
		n = limit
	}
	out := make([]model.TaskResource, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.TaskResource{
			Title:        fmt.Sprintf("%s resource %d", topic, i+1),
			URL:          fmt.Sprintf("https://example.com/%d", i+1),
			Platform:     "YouTube",
			ResourceType: "video",
			Confidence:   model.ConfidenceHigh,
			Validated:    true,
		})
	}
	return out
}

// fakeVideoSearcher drives the resource resolver directly.
type fakeVideoSearcher struct {
	videos []Video
	err    error
}

func (f *fakeVideoSearcher) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.videos) > limit {
		return f.videos[:limit], nil
	}
	return f.videos, nil
}

func (f *fakeVideoSearcher) FallbackSearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + query
}

type fakeCurator struct {
	articles []CuratedResource
	fail     bool
}

func (f *fakeCurator) CurateArticles(ctx context.Context, subject, topic string, level model.ProficiencyLevel, goalContext string, count int) ([]CuratedResource, bool) {
	if f.fail {
		return nil, false
	}
	if len(f.articles) > count {
		return f.articles[:count], true
	}
	return f.articles, true
}

func testVideo(id, title string) Video {
	return Video{
		ID:          id,
		Title:       title,
		URL:         "https://www.youtube.com/embed/" + id,
		WatchURL:    "https://www.youtube.com/watch?v=" + id,
		Views:       120000,
		Duration:    600,
		Uploader:    "Edu Channel",
		ValidatedAt: time.Now(),
	}
}
