package dto

import (
	"time"

	"github.com/google/uuid"

	"classroom-egress/constant"
)

type StartRecordingRequest struct {
	RoomName string `json:"roomName"`
	UserName string `json:"userName"`
}

type StartRecordingResponse struct {
	EgressID string `json:"egressId"`
}

type StopRecordingRequest struct {
	EgressID string `json:"egressId"`
}

type ExtractAudioRequest struct {
	VideoURL string `json:"videoUrl"`
}

type ExtractAudioResponse struct {
	Key string `json:"key"`
}

type TranscribeRequest struct {
	Key string `json:"key"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

// EgressInfo is the transport-agnostic view of a recording job as reported by
// the media server. MeetingID is filled from local bookkeeping when a matching
// row exists; it is advisory and may be empty.
type EgressInfo struct {
	EgressID  string                `json:"egressId"`
	RoomName  string                `json:"roomName"`
	MeetingID string                `json:"meetingId,omitempty"`
	Status    constant.EgressStatus `json:"status"`
	StartedAt time.Time             `json:"startedAt,omitzero"`
	EndedAt   time.Time             `json:"endedAt,omitzero"`
	Error     string                `json:"error,omitempty"`
}

// RecordingEvent is published to the recording_events exchange on lifecycle
// transitions. Delivery is best-effort.
type RecordingEvent struct {
	EventID    uuid.UUID             `json:"eventId"`
	EgressID   string                `json:"egressId,omitempty"`
	MeetingID  string                `json:"meetingId,omitempty"`
	Key        string                `json:"key,omitempty"`
	Status     constant.EgressStatus `json:"status,omitempty"`
	OccurredAt time.Time             `json:"occurredAt"`
}
