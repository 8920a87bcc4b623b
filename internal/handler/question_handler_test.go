package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Growthfyi/squeak/internal/auth"
	"github.com/Growthfyi/squeak/internal/model"
	"github.com/Growthfyi/squeak/internal/notify"
	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/Growthfyi/squeak/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingNotifier captures alerts instead of posting them.
type recordingNotifier struct {
	alerts []notify.QuestionAlert
}

func (n *recordingNotifier) NotifyNewQuestion(alert notify.QuestionAlert) {
	n.alerts = append(n.alerts, alert)
}

type questionEnv struct {
	e        *echo.Echo
	db       *gorm.DB
	handler  *QuestionHandler
	jwt      *jwtutil.JWTUtil
	notifier *recordingNotifier
}

func newQuestionEnv(t *testing.T) *questionEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.SqueakConfig{},
		&model.Profile{},
		&model.ProfileReadonly{},
		&model.Question{},
		&model.Reply{},
		&model.Topic{},
		&model.TopicGroup{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	questions := repository.NewQuestionRepo(db)
	profiles := repository.NewProfileRepo(db)
	configs := repository.NewConfigRepo(db)

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	notifier := &recordingNotifier{}

	return &questionEnv{
		e:        echo.New(),
		db:       db,
		handler:  NewQuestionHandler(questions, profiles, configs, auth.NewResolver(jwt), notifier),
		jwt:      jwt,
		notifier: notifier,
	}
}

// seedTenant creates a config row and a registered profile for user-1 in org-a,
// returning the profile id and a valid session token.
func (env *questionEnv) seedTenant(t *testing.T, autoPublish bool) (profileID, token string) {
	t.Helper()

	config := model.SqueakConfig{
		OrganizationID:        "org-a",
		PermalinkBase:         "forum",
		SlackQuestionsChannel: "#questions",
	}
	if err := env.db.Create(&config).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}
	if !autoPublish {
		// Create folds false back into the column default, update does not.
		if err := env.db.Model(&config).Update("question_auto_publish", false).Error; err != nil {
			t.Fatalf("update config: %v", err)
		}
	}

	profiles := repository.NewProfileRepo(env.db)
	profile, err := profiles.Create(context.Background(), "org-a", "user-1", "Grace", "H", "")
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	token, err = env.jwt.GenerateToken("user-1", "grace@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return profile.ID, token
}

func (env *questionEnv) postQuestion(t *testing.T, token string, payload string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/question", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	if err := env.handler.Create(env.e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return rec
}

func (env *questionEnv) getQuestion(t *testing.T, organizationID, permalink string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet,
		"/api/question?organizationId="+organizationID+"&permalink="+permalink, nil)
	rec := httptest.NewRecorder()
	if err := env.handler.Get(env.e.NewContext(req, rec)); err != nil {
		t.Fatalf("Get: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestCreateQuestionRequiresSession(t *testing.T) {
	env := newQuestionEnv(t)
	env.seedTenant(t, true)

	rec := env.postQuestion(t, "", `{"body":"b","subject":"s","slug":"x","organizationId":"org-a"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Errorf("body = %q, want empty object", rec.Body.String())
	}

	var count int64
	env.db.Model(&model.Question{}).Count(&count)
	if count != 0 {
		t.Errorf("question rows = %d after rejected request, want 0", count)
	}
}

func TestCreateQuestionSanitizesAndPublishes(t *testing.T) {
	env := newQuestionEnv(t)
	profileID, token := env.seedTenant(t, true)

	rec := env.postQuestion(t, token,
		`{"body":"<b>hi</b><script>x()</script>","subject":"greeting","slug":"hello-world","organizationId":"org-a"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["body"] != "hi" {
		t.Errorf(`response body = %q, want "hi" (markup stripped)`, body["body"])
	}
	if body["published"] != true {
		t.Error("published = false, want true under auto-publish")
	}
	if body["profileId"] != profileID {
		t.Errorf("profileId = %v, want %q", body["profileId"], profileID)
	}
	if body["subject"] != "greeting" {
		t.Errorf("subject = %v, want greeting", body["subject"])
	}

	var reply model.Reply
	if err := env.db.First(&reply).Error; err != nil {
		t.Fatalf("load opening reply: %v", err)
	}
	if reply.Body != "hi" {
		t.Errorf("stored reply body = %q, want sanitized %q", reply.Body, "hi")
	}
	if !reply.Published {
		t.Error("opening reply must be published")
	}

	if len(env.notifier.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(env.notifier.alerts))
	}
	alert := env.notifier.alerts[0]
	if alert.OrganizationID != "org-a" || alert.Subject != "greeting" || alert.Body != "hi" {
		t.Errorf("alert = %+v, want sanitized payload for org-a", alert)
	}
}

func TestCreateQuestionHonorsModerationPolicy(t *testing.T) {
	env := newQuestionEnv(t)
	_, token := env.seedTenant(t, false)

	rec := env.postQuestion(t, token,
		`{"body":"needs review","subject":"s","slug":"x","organizationId":"org-a"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["published"] != false {
		t.Error("published = true, want false when auto-publish is off")
	}

	var question model.Question
	if err := env.db.First(&question).Error; err != nil {
		t.Fatalf("load question: %v", err)
	}
	if question.Published {
		t.Error("stored question published, want unpublished")
	}
	var reply model.Reply
	if err := env.db.First(&reply).Error; err != nil {
		t.Fatalf("load reply: %v", err)
	}
	if !reply.Published {
		t.Error("opening reply unpublished, want published even under moderation")
	}
}

func TestCreateQuestionProfileMissing(t *testing.T) {
	env := newQuestionEnv(t)
	env.seedTenant(t, true)

	// Valid session for an identity that never registered in this org.
	token, err := env.jwt.GenerateToken("stranger", "")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec := env.postQuestion(t, token, `{"body":"b","subject":"s","slug":"x","organizationId":"org-a"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(env.notifier.alerts) != 0 {
		t.Errorf("alerts = %d, want 0", len(env.notifier.alerts))
	}
}

func TestCreateQuestionConfigMissing(t *testing.T) {
	env := newQuestionEnv(t)
	_, token := env.seedTenant(t, true)

	// Register the same identity in an org that has no settings row.
	profiles := repository.NewProfileRepo(env.db)
	if _, err := profiles.Create(context.Background(), "org-unconfigured", "user-1", "Grace", "H", ""); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	rec := env.postQuestion(t, token, `{"body":"b","subject":"s","slug":"x","organizationId":"org-unconfigured"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	env := newQuestionEnv(t)
	_, token := env.seedTenant(t, true)

	for name, payload := range map[string]string{
		"missing body":    `{"subject":"s","slug":"x","organizationId":"org-a"}`,
		"missing subject": `{"body":"b","slug":"x","organizationId":"org-a"}`,
		"missing org":     `{"body":"b","subject":"s","slug":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.postQuestion(t, token, payload)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetQuestionMissingParams(t *testing.T) {
	env := newQuestionEnv(t)
	env.seedTenant(t, true)

	rec := env.getQuestion(t, "", "/forum/hello")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Missing required params" {
		t.Errorf("error = %v, want %q", body["error"], "Missing required params")
	}
}

func TestGetQuestionPrefixGate(t *testing.T) {
	env := newQuestionEnv(t)
	profileID, _ := env.seedTenant(t, true)

	permalink := "hello-world"
	question := model.Question{
		Subject:        "greeting",
		Permalink:      &permalink,
		Published:      true,
		OrganizationID: "org-a",
		ProfileID:      profileID,
	}
	if err := env.db.Create(&question).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}

	// The remainder resolves, but the tenant prefix is wrong: hard 404.
	rec := env.getQuestion(t, "org-a", "/blog/hello-world")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unprefixed permalink", rec.Code)
	}
}

func TestGetQuestionSoftMiss(t *testing.T) {
	env := newQuestionEnv(t)
	env.seedTenant(t, true)

	rec := env.getQuestion(t, "org-a", "/forum/no-such-question")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a soft miss", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["question"] != nil {
		t.Errorf("question = %v, want null", body["question"])
	}
	replies, ok := body["replies"].([]any)
	if !ok || len(replies) != 0 {
		t.Errorf("replies = %v, want empty array", body["replies"])
	}
}

func TestQuestionRoundTrip(t *testing.T) {
	env := newQuestionEnv(t)
	_, token := env.seedTenant(t, true)

	rec := env.postQuestion(t, token,
		`{"body":"How do I embed this?","subject":"embedding","slug":"embed-widget","organizationId":"org-a"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.getQuestion(t, "org-a", "/forum/embed-widget")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	question, ok := body["question"].(map[string]any)
	if !ok {
		t.Fatalf("question = %v, want object", body["question"])
	}
	if question["subject"] != "embedding" {
		t.Errorf("subject = %v, want embedding", question["subject"])
	}

	replies, ok := body["replies"].([]any)
	if !ok || len(replies) != 1 {
		t.Fatalf("replies = %v, want exactly the opening reply", body["replies"])
	}
	reply := replies[0].(map[string]any)
	if reply["body"] != "How do I embed this?" {
		t.Errorf("reply body = %v", reply["body"])
	}
	profile, ok := reply["profile"].(map[string]any)
	if !ok {
		t.Fatalf("reply profile = %v, want author summary", reply["profile"])
	}
	if profile["first_name"] != "Grace" {
		t.Errorf("author first_name = %v, want Grace", profile["first_name"])
	}
	metadata := reply["metadata"].(map[string]any)
	if metadata["role"] != "user" {
		t.Errorf("author role = %v, want user", metadata["role"])
	}

	// A second organization must not see the question through its own config.
	config := model.SqueakConfig{OrganizationID: "org-b", PermalinkBase: "forum"}
	if err := env.db.Create(&config).Error; err != nil {
		t.Fatalf("seed org-b config: %v", err)
	}
	rec = env.getQuestion(t, "org-b", "/forum/embed-widget")
	if rec.Code != http.StatusOK {
		t.Fatalf("cross-tenant get status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["question"] != nil {
		t.Errorf("cross-tenant question = %v, want null", body["question"])
	}
}
