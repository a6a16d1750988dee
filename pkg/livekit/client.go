package livekit

import (
	"context"
	"time"

	lkproto "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"

	"classroom-egress/config"
	"classroom-egress/constant"
	"classroom-egress/dto"
)

// Recording output naming: {room}.m3u8 is the finalized playlist,
// {room}-live.m3u8 the in-progress one, segments every 10 seconds.
const segmentDurationSeconds = 10

// Client wraps the LiveKit egress API. Segment output goes straight to the
// configured S3 bucket with server-assigned credentials; the uploader in
// pkg/storage is not involved in that path.
type Client struct {
	egress *lksdk.EgressClient
	s3     config.S3
}

func NewClient(cfg config.LiveKit, s3 config.S3) *Client {
	return &Client{
		egress: lksdk.NewEgressClient(cfg.URL, cfg.APIKey, cfg.APISecret),
		s3:     s3,
	}
}

func (c *Client) StartRecording(ctx context.Context, roomName, identity string) (string, error) {
	req := &lkproto.ParticipantEgressRequest{
		RoomName: roomName,
		Identity: identity,
		Options: &lkproto.ParticipantEgressRequest_Preset{
			Preset: lkproto.EncodingOptionsPreset_H264_1080P_30,
		},
		SegmentOutputs: []*lkproto.SegmentedFileOutput{{
			FilenamePrefix:   roomName,
			PlaylistName:     roomName + ".m3u8",
			LivePlaylistName: roomName + "-live.m3u8",
			SegmentDuration:  segmentDurationSeconds,
			Output: &lkproto.SegmentedFileOutput_S3{S3: &lkproto.S3Upload{
				AccessKey: c.s3.AccessKey,
				Secret:    c.s3.SecretKey,
				Bucket:    c.s3.Bucket,
				Endpoint:  c.s3.Endpoint,
				Region:    c.s3.Region,
			}},
		}},
	}

	info, err := c.egress.StartParticipantEgress(ctx, req)
	if err != nil {
		return "", err
	}
	return info.EgressId, nil
}

func (c *Client) StopRecording(ctx context.Context, egressID string) (*dto.EgressInfo, error) {
	info, err := c.egress.StopEgress(ctx, &lkproto.StopEgressRequest{EgressId: egressID})
	if err != nil {
		return nil, err
	}
	return toEgressInfo(info), nil
}

func (c *Client) ListRecording(ctx context.Context, egressID string) ([]*dto.EgressInfo, error) {
	res, err := c.egress.ListEgress(ctx, &lkproto.ListEgressRequest{EgressId: egressID})
	if err != nil {
		return nil, err
	}
	infos := make([]*dto.EgressInfo, 0, len(res.Items))
	for _, item := range res.Items {
		infos = append(infos, toEgressInfo(item))
	}
	return infos, nil
}

func toEgressInfo(info *lkproto.EgressInfo) *dto.EgressInfo {
	out := &dto.EgressInfo{
		EgressID: info.EgressId,
		RoomName: info.RoomName,
		Status:   toStatus(info.Status),
		Error:    info.Error,
	}
	if info.StartedAt > 0 {
		out.StartedAt = time.Unix(0, info.StartedAt)
	}
	if info.EndedAt > 0 {
		out.EndedAt = time.Unix(0, info.EndedAt)
	}
	return out
}

func toStatus(s lkproto.EgressStatus) constant.EgressStatus {
	switch s {
	case lkproto.EgressStatus_EGRESS_STARTING:
		return constant.EgressStatusStarting
	case lkproto.EgressStatus_EGRESS_ACTIVE:
		return constant.EgressStatusActive
	case lkproto.EgressStatus_EGRESS_ENDING:
		return constant.EgressStatusStopping
	case lkproto.EgressStatus_EGRESS_COMPLETE:
		return constant.EgressStatusComplete
	default:
		return constant.EgressStatusFailed
	}
}
