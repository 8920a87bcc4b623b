package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Growthfyi/squeak/internal/auth"
	"github.com/Growthfyi/squeak/internal/model"
	"github.com/Growthfyi/squeak/internal/notify"
	"github.com/Growthfyi/squeak/internal/repository"
	"github.com/Growthfyi/squeak/internal/sanitize"
	"github.com/Growthfyi/squeak/pkg/logger"
	"github.com/Growthfyi/squeak/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// QuestionHandler serves the widget-facing question endpoints.
type QuestionHandler struct {
	questions *repository.QuestionRepo
	profiles  *repository.ProfileRepo
	configs   *repository.ConfigRepo
	sessions  *auth.Resolver
	notifier  notify.Notifier
}

// NewQuestionHandler creates a question handler with its collaborators injected
func NewQuestionHandler(
	questions *repository.QuestionRepo,
	profiles *repository.ProfileRepo,
	configs *repository.ConfigRepo,
	sessions *auth.Resolver,
	notifier notify.Notifier,
) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		profiles:  profiles,
		configs:   configs,
		sessions:  sessions,
		notifier:  notifier,
	}
}

// CreateQuestionRequest is the POST /api/question payload sent by the widget.
type CreateQuestionRequest struct {
	Body           string `json:"body"`
	Slug           string `json:"slug"`
	Subject        string `json:"subject"`
	OrganizationID string `json:"organizationId"`
}

// CreateQuestionResponse is the 201 payload.
type CreateQuestionResponse struct {
	MessageID uint     `json:"messageId"`
	ProfileID string   `json:"profileId"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Slug      []string `json:"slug"`
	Published bool     `json:"published"`
}

// Get resolves a question by its tenant permalink and returns it with its
// replies. The permalink must carry the organization's permalink base as a
// prefix; an unprefixed path is a hard 404 even if the remainder would
// resolve. A prefixed path that matches no question is a soft miss:
// {question: null, replies: []} with a 200.
func (h *QuestionHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	organizationID := c.QueryParam("organizationId")
	permalink := c.QueryParam("permalink")

	if organizationID == "" || permalink == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Missing required params"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	config, err := h.configs.Get(ctx, organizationID)
	if err != nil {
		log.Error("failed to fetch config", zap.String("organization_id", organizationID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching config"})
	}

	prefix := "/" + config.PermalinkBase + "/"
	if !strings.HasPrefix(permalink, prefix) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Question not found"})
	}

	key := strings.TrimPrefix(permalink, prefix)
	question, err := h.questions.GetByPermalink(ctx, organizationID, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{
				"question": nil,
				"replies":  []model.ReplyView{},
			})
		}
		log.Error("failed to fetch question", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching question"})
	}

	replies, err := h.questions.RepliesWithAuthorRole(ctx, question.ID)
	if err != nil {
		log.Error("failed to fetch replies", zap.Uint("question_id", question.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching replies"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"question": question,
		"replies":  replies,
	})
}

// Create runs the question creation pipeline: sanitize, resolve session,
// resolve tenant profile, apply the auto-publish policy, create the question
// and its opening reply atomically, respond 201, then dispatch the alert
// without blocking the caller.
func (h *QuestionHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req CreateQuestionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("failed to parse question request", zap.Error(err))
		prometheus.RecordQuestionError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Body == "" || req.Subject == "" || req.OrganizationID == "" {
		prometheus.RecordQuestionError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body, subject and organizationId are required"})
	}

	body := sanitize.Body(req.Body)

	user := h.sessions.Resolve(c)
	if user == nil {
		prometheus.RecordQuestionError("not_authenticated")
		return c.JSON(http.StatusUnauthorized, echo.Map{})
	}

	profile, err := h.profiles.GetByUser(ctx, req.OrganizationID, user.UserID)
	if err != nil {
		log.Error("failed to fetch user profile",
			zap.String("organization_id", req.OrganizationID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		if errors.Is(err, repository.ErrProfileMissing) {
			// The session is valid but the identity has no profile in this
			// organization: an authorization failure, not a server fault.
			prometheus.RecordQuestionError("profile_missing")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no profile for this organization"})
		}
		prometheus.RecordQuestionError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching user profile"})
	}

	config, err := h.configs.Get(ctx, req.OrganizationID)
	if err != nil {
		log.Error("failed to fetch config", zap.String("organization_id", req.OrganizationID), zap.Error(err))
		prometheus.RecordQuestionError("config_missing")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error fetching config"})
	}

	question := &model.Question{
		Subject:        req.Subject,
		Slug:           []string{req.Slug},
		Published:      config.QuestionAutoPublish,
		OrganizationID: req.OrganizationID,
		ProfileID:      profile.ID,
	}
	// The slug doubles as the tenant-unique permalink so the widget can fetch
	// the question back through the read path.
	if req.Slug != "" {
		permalink := req.Slug
		question.Permalink = &permalink
	}

	// The author's message is modeled as the first reply to the question,
	// created in the same transaction.
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if _, err := h.questions.CreateQuestionWithReply(ctx, question, body); err != nil {
		log.Error("failed to create question", zap.Error(err))
		prometheus.RecordQuestionError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating message"})
	}

	prometheus.QuestionCreatedCounter.Inc()
	prometheus.ReplyCreatedCounter.Inc()
	log.Info("question created",
		zap.Uint("question_id", question.ID),
		zap.String("organization_id", req.OrganizationID),
		zap.Bool("published", question.Published))

	err = c.JSON(http.StatusCreated, CreateQuestionResponse{
		MessageID: question.ID,
		ProfileID: profile.ID,
		Subject:   req.Subject,
		Body:      body,
		Slug:      []string{req.Slug},
		Published: question.Published,
	})

	// Fire-and-forget: the response above is final whatever happens to the
	// alert.
	h.notifier.NotifyNewQuestion(notify.QuestionAlert{
		OrganizationID: req.OrganizationID,
		QuestionID:     question.ID,
		Subject:        req.Subject,
		Body:           body,
		Slug:           req.Slug,
		ProfileID:      profile.ID,
	})

	return err
}
