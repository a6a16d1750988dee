package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"classroom-egress/constant"
	"classroom-egress/dto"
	"classroom-egress/pkg/rabbitmq"
	"classroom-egress/repository"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrStop           = errors.New("failed to stop recording")
	ErrNotFound       = errors.New("recording not found")
)

// ControlPlane is the recording management surface of the media server.
type ControlPlane interface {
	StartRecording(ctx context.Context, roomName, identity string) (string, error)
	StopRecording(ctx context.Context, egressID string) (*dto.EgressInfo, error)
	ListRecording(ctx context.Context, egressID string) ([]*dto.EgressInfo, error)
}

type EgressService interface {
	Start(ctx context.Context, roomName, userName string) (string, error)
	Stop(ctx context.Context, egressID string) (*dto.EgressInfo, error)
	Status(ctx context.Context, egressID string) (*dto.EgressInfo, error)
}

type egressService struct {
	control ControlPlane
	repo    repository.RecordingRepository
	events  rabbitmq.Publisher
}

func NewEgressService(control ControlPlane, repo repository.RecordingRepository, events rabbitmq.Publisher) EgressService {
	return &egressService{
		control: control,
		repo:    repo,
		events:  events,
	}
}

// Start begins a segmented recording of the named participant. There is no
// check for an already-active recording on the room; a second start while one
// is running starts a second egress.
func (s *egressService) Start(ctx context.Context, roomName, userName string) (string, error) {
	if strings.TrimSpace(roomName) == "" {
		return "", errors.Join(ErrInvalidRequest, errors.New("room name is required"))
	}
	if strings.TrimSpace(userName) == "" {
		return "", errors.Join(ErrInvalidRequest, errors.New("user name is required"))
	}

	egressID, err := s.control.StartRecording(ctx, roomName, userName)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("room", roomName).Msg("failed to start egress")
		return "", err
	}

	zerolog.Ctx(ctx).Info().Str("egress_id", egressID).Str("room", roomName).Msg("egress started")

	// The recording is already running on the media server at this point. A
	// failed local write must not fail the caller: the control plane is
	// authoritative, local state is advisory and may lag.
	if err := s.repo.RecordEgressStarted(ctx, egressID, roomName); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("egress_id", egressID).
			Str("room", roomName).
			Msg("egress started but local bookkeeping failed")
	}

	s.publish(ctx, rabbitmq.RoutingKeyStarted, dto.RecordingEvent{
		EventID:    uuid.New(),
		EgressID:   egressID,
		MeetingID:  roomName,
		Status:     constant.EgressStatusActive,
		OccurredAt: time.Now(),
	})

	return egressID, nil
}

func (s *egressService) Stop(ctx context.Context, egressID string) (*dto.EgressInfo, error) {
	if strings.TrimSpace(egressID) == "" {
		return nil, errors.Join(ErrStop, errors.New("egress id is required"))
	}

	info, err := s.control.StopRecording(ctx, egressID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("egress_id", egressID).Msg("failed to stop egress")
		return nil, errors.Join(ErrStop, err)
	}

	if err := s.repo.UpdateEgressStatus(ctx, egressID, constant.EgressStatusComplete); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("egress_id", egressID).
			Msg("egress stopped but local bookkeeping failed")
	}

	s.publish(ctx, rabbitmq.RoutingKeyStopped, dto.RecordingEvent{
		EventID:    uuid.New(),
		EgressID:   egressID,
		MeetingID:  info.RoomName,
		Status:     constant.EgressStatusComplete,
		OccurredAt: time.Now(),
	})

	return info, nil
}

// Status reads the control plane directly on every call; nothing is cached
// locally, so repeated queries track the media server's own state.
func (s *egressService) Status(ctx context.Context, egressID string) (*dto.EgressInfo, error) {
	if strings.TrimSpace(egressID) == "" {
		return nil, errors.Join(ErrInvalidRequest, errors.New("egress id is required"))
	}

	infos, err := s.control.ListRecording(ctx, egressID)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, ErrNotFound
	}

	info := infos[0]
	if egress, err := s.repo.FindEgressByID(ctx, egressID); err == nil {
		info.MeetingID = egress.MeetingID
	}
	return info, nil
}

func (s *egressService) publish(ctx context.Context, routingKey string, event dto.RecordingEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, routingKey, event)
}
