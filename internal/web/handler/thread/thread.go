// Package thread implements the thread API.
package thread

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	controller "github.com/parley-chat/parley/internal/db/controller/thread"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/web/handler"
)

const (
	// ChannelPath is the channel-scoped route group for threads.
	ChannelPath = handler.APIPrefix + "/channels/:channelID/threads"
	// Path is the thread-scoped route group.
	Path = handler.APIPrefix + "/threads"
)

// Service is the thread handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	acc       *access.Service
	validator *validator.Validate
}

// Handler is the thread handler.
var Handler = Service{}

type createPayload struct {
	Name               string `json:"name" validate:"required,max=100"`
	Private            bool   `json:"private"`
	AutoArchiveMinutes int    `json:"auto_archive_minutes" validate:"required,oneof=60 1440 4320 10080"`
}

type lockPayload struct {
	Locked bool `json:"locked"`
}

// response is the wire representation of a thread.
type response struct {
	ID                 uint64     `json:"id"`
	ChannelID          uint64     `json:"channel_id"`
	OwnerID            uint64     `json:"owner_id"`
	Name               string     `json:"name"`
	Private            bool       `json:"private"`
	Archived           bool       `json:"archived"`
	Locked             bool       `json:"locked"`
	AutoArchiveMinutes int        `json:"auto_archive_minutes"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`
}

func newResponse(th *models.Thread) response {
	return response{
		ID:                 th.ID,
		ChannelID:          th.ChannelID,
		OwnerID:            th.OwnerID,
		Name:               th.Name,
		Private:            th.Private,
		Archived:           th.Archived,
		Locked:             th.Locked,
		AutoArchiveMinutes: th.AutoArchiveMinutes,
		ArchivedAt:         th.ArchivedAt,
	}
}

// Init initializes the thread handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, acc *access.Service) error {
	if app == nil || cfg == nil || db == nil || acc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.acc = acc
	s.validator = validator.New()

	viewChannel := access.RequireChannelFlag(acc, "channelID", permissions.FlagViewChannel)

	app.Route(ChannelPath, func(router fiber.Router) {
		router.Get(handler.RootPath, viewChannel, s.List)
		router.Post(handler.RootPath, s.Create)
	})

	app.Route(Path, func(router fiber.Router) {
		router.Get("/:id", s.Get)
		router.Post("/:id/archive", s.Archive)
		router.Post("/:id/unarchive", s.Unarchive)
		router.Put("/:id/lock", s.SetLocked)
		router.Delete("/:id", s.Delete)
		router.Put("/:id/members/@me", s.Join)
		router.Delete("/:id/members/@me", s.Leave)
		router.Put("/:id/members/:memberID", s.AddMember)
		router.Delete("/:id/members/:memberID", s.RemoveMember)
	})

	return nil
}

// List returns a channel's threads. Archived threads are included with
// ?archived=true.
func (s *Service) List(c *fiber.Ctx) error {
	channelID, err := handler.ParseID(c, "channelID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	threads, err := controller.ListByChannel(s.db, channelID, c.QueryBool("archived"))
	if err != nil {
		log.Error().Err(err).Uint64("channel_id", channelID).Msg("failed to list threads")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list threads"})
	}

	out := make([]response, len(threads))
	for i := range threads {
		out[i] = newResponse(&threads[i])
	}

	return c.JSON(out)
}

// Create starts a thread in a text channel. Public and private threads
// require their respective creation flags in the channel; the creator
// automatically joins.
func (s *Service) Create(c *fiber.Ctx) error {
	memberID, ok := access.ActingMember(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	channelID, err := handler.ParseID(c, "channelID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	var body createPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ValidationMessages(err)})
	}

	needed := permissions.FlagCreatePublicThreads
	if body.Private {
		needed = permissions.FlagCreatePrivateThreads
	}

	if ok, err := s.requireInChannel(c, memberID, channelID, needed); !ok {
		return err
	}

	th, err := controller.Create(s.db, channelID, memberID, body.Name, body.Private, body.AutoArchiveMinutes)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
		case errors.Is(err, controller.ErrNotTextChannel):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "threads can only be started in text channels"})
		case errors.Is(err, controller.ErrInvalidAutoArchive):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported auto-archive duration"})
		}

		log.Error().Err(err).Uint64("channel_id", channelID).Str("name", body.Name).Msg("failed to create thread")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create thread"})
	}

	log.Info().Uint64("thread_id", th.ID).Uint64("channel_id", channelID).
		Uint64("owner_id", memberID).Bool("private", th.Private).Msg("thread created")

	return c.Status(fiber.StatusCreated).JSON(newResponse(th))
}

// Get returns a single thread. Reading requires VIEW_CHANNEL on the parent
// channel; a private thread is only visible to its owner, its members, and
// MANAGE_THREADS holders.
func (s *Service) Get(c *fiber.Ctx) error {
	memberID, ok := access.ActingMember(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	if ok, errResp := s.requireInChannel(c, memberID, th.ChannelID, permissions.FlagViewChannel); !ok {
		return errResp
	}

	if th.Private && memberID != th.OwnerID {
		joined, err := controller.IsMember(s.db, th.ID, memberID)
		if err != nil {
			log.Error().Err(err).Uint64("thread_id", th.ID).Uint64("member_id", memberID).
				Msg("failed to check thread membership")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		if !joined {
			if ok, errResp := s.requireInChannel(c, memberID, th.ChannelID, permissions.FlagManageThreads); !ok {
				return errResp
			}
		}
	}

	return c.JSON(newResponse(th))
}

// Archive archives a thread. The owner and holders of MANAGE_THREADS may
// archive.
func (s *Service) Archive(c *fiber.Ctx) error {
	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	if ok, err := s.requireOwnerOrManager(c, th); !ok {
		return err
	}

	th, err := controller.Archive(s.db, th.ID)
	if err != nil {
		log.Error().Err(err).Uint64("thread_id", th.ID).Msg("failed to archive thread")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to archive thread"})
	}

	return c.JSON(newResponse(th))
}

// Unarchive reactivates a thread. A locked thread can only be unarchived by
// a MANAGE_THREADS holder, which also unlocks it.
func (s *Service) Unarchive(c *fiber.Ctx) error {
	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	if th.Locked {
		if ok, err := s.requireManager(c, th); !ok {
			return err
		}

		if _, err := controller.SetLocked(s.db, th.ID, false); err != nil {
			log.Error().Err(err).Uint64("thread_id", th.ID).Msg("failed to unlock thread")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unarchive thread"})
		}
	} else if ok, err := s.requireOwnerOrManager(c, th); !ok {
		return err
	}

	th, err := controller.Unarchive(s.db, th.ID)
	if err != nil {
		log.Error().Err(err).Uint64("thread_id", th.ID).Msg("failed to unarchive thread")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unarchive thread"})
	}

	return c.JSON(newResponse(th))
}

// SetLocked locks or unlocks a thread. Locking also archives it.
func (s *Service) SetLocked(c *fiber.Ctx) error {
	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	if ok, err := s.requireManager(c, th); !ok {
		return err
	}

	var body lockPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	th, err := controller.SetLocked(s.db, th.ID, body.Locked)
	if err != nil {
		log.Error().Err(err).Uint64("thread_id", th.ID).Msg("failed to update thread lock")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update thread lock"})
	}

	return c.JSON(newResponse(th))
}

// Delete removes a thread.
func (s *Service) Delete(c *fiber.Ctx) error {
	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	if ok, err := s.requireManager(c, th); !ok {
		return err
	}

	if err := controller.Delete(s.db, th.ID); err != nil {
		log.Error().Err(err).Uint64("thread_id", th.ID).Msg("failed to delete thread")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete thread"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Join adds the acting member to a thread. Joining a private thread needs
// MANAGE_THREADS; otherwise VIEW_CHANNEL in the parent channel suffices.
func (s *Service) Join(c *fiber.Ctx) error {
	memberID, ok := access.ActingMember(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	needed := permissions.FlagViewChannel
	if th.Private {
		needed = permissions.FlagManageThreads
	}

	if ok, err := s.requireInChannel(c, memberID, th.ChannelID, needed); !ok {
		return err
	}

	if err := controller.AddMember(s.db, th.ID, memberID); err != nil {
		log.Error().Err(err).Uint64("thread_id", th.ID).Uint64("member_id", memberID).Msg("failed to join thread")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join thread"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Leave removes the acting member from a thread.
func (s *Service) Leave(c *fiber.Ctx) error {
	memberID, ok := access.ActingMember(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	if err := controller.RemoveMember(s.db, th.ID, memberID); err != nil {
		if errors.Is(err, controller.ErrNotThreadMember) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member is not in the thread"})
		}

		log.Error().Err(err).Uint64("thread_id", th.ID).Uint64("member_id", memberID).Msg("failed to leave thread")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to leave thread"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddMember adds another member to a thread. Requires the ability to send
// messages in threads on the parent channel.
func (s *Service) AddMember(c *fiber.Ctx) error {
	actingID, ok := access.ActingMember(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	memberID, err := handler.ParseID(c, "memberID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	if ok, errResp := s.requireInChannel(c, actingID, th.ChannelID, permissions.FlagSendMessagesInThreads); !ok {
		return errResp
	}

	if err := controller.AddMember(s.db, th.ID, memberID); err != nil {
		log.Error().Err(err).Uint64("thread_id", th.ID).Uint64("member_id", memberID).Msg("failed to add thread member")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add thread member"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveMember removes another member from a thread. Requires
// MANAGE_THREADS.
func (s *Service) RemoveMember(c *fiber.Ctx) error {
	th, errResp := s.load(c)
	if th == nil {
		return errResp
	}

	if ok, errResp := s.requireManager(c, th); !ok {
		return errResp
	}

	memberID, err := handler.ParseID(c, "memberID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	if err := controller.RemoveMember(s.db, th.ID, memberID); err != nil {
		if errors.Is(err, controller.ErrNotThreadMember) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member is not in the thread"})
		}

		log.Error().Err(err).Uint64("thread_id", th.ID).Uint64("member_id", memberID).Msg("failed to remove thread member")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove thread member"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// load reads the thread from the :id route parameter. On failure it returns
// a nil thread and the response already written to the client.
func (s *Service) load(c *fiber.Ctx) (*models.Thread, error) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid thread id"})
	}

	th, err := controller.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrThreadNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "thread not found"})
		}

		log.Error().Err(err).Uint64("thread_id", id).Msg("failed to load thread")

		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load thread"})
	}

	return th, nil
}

// requireInChannel checks an effective channel flag for the acting member
// and writes the error response itself when the check fails.
func (s *Service) requireInChannel(c *fiber.Ctx, memberID, channelID uint64, flag permissions.Flag) (bool, error) {
	has, err := s.acc.HasInChannel(memberID, channelID, flag)
	if err != nil {
		log.Error().Err(err).Uint64("member_id", memberID).Uint64("channel_id", channelID).
			Msg("failed to check channel permissions")

		return false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	if !has {
		return false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "missing permissions"})
	}

	return true, nil
}

// requireManager checks MANAGE_THREADS on the thread's parent channel.
func (s *Service) requireManager(c *fiber.Ctx, th *models.Thread) (bool, error) {
	memberID, ok := access.ActingMember(c)
	if !ok {
		return false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	return s.requireInChannel(c, memberID, th.ChannelID, permissions.FlagManageThreads)
}

// requireOwnerOrManager lets the thread owner through without a flag check.
func (s *Service) requireOwnerOrManager(c *fiber.Ctx, th *models.Thread) (bool, error) {
	memberID, ok := access.ActingMember(c)
	if !ok {
		return false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if memberID == th.OwnerID {
		return true, nil
	}

	return s.requireInChannel(c, memberID, th.ChannelID, permissions.FlagManageThreads)
}
