package reconcile

import (
	"testing"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsToRemoveFor_TargetOnly(t *testing.T) {
	local := []*models.ArtifactRecord{
		rec("a1", "audio_talk_me_2026-01-15.webm", models.KindAudio),
		rec("a2", "audio_other_me_2026-01-16.webm", models.KindAudio),
	}

	ids, records, err := RecordsToRemoveFor(local, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ids)
	require.Len(t, records, 1)
	assert.Equal(t, "a1", records[0].Id)
}

func TestRecordsToRemoveFor_CascadesThumbnail(t *testing.T) {
	local := []*models.ArtifactRecord{
		rec("v1", "video_demo_me_2026-01-15.mp4", models.KindVideo),
		rec("t1", "thumb_demo_me_2026-01-15.png", models.KindThumbnail),
		rec("t2", "thumb_other_me_2026-01-15.png", models.KindThumbnail),
	}

	ids, records, err := RecordsToRemoveFor(local, "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "t1"}, ids)
	require.Len(t, records, 2)
	assert.Equal(t, "t1", records[1].Id)
}

func TestRecordsToRemoveFor_MultipleThumbnails(t *testing.T) {
	local := []*models.ArtifactRecord{
		rec("v1", "video_demo_me_2026-01-15.mp4", models.KindVideo),
		rec("t1", "thumb_demo_me_2026-01-15.png", models.KindThumbnail),
		rec("t2", "thumbnail_demo_me_2026-01-15.jpg", models.KindThumbnail),
	}

	ids, _, err := RecordsToRemoveFor(local, "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "t1", "t2"}, ids)
}

func TestRecordsToRemoveFor_ThumbnailTargetNoCascade(t *testing.T) {
	local := []*models.ArtifactRecord{
		rec("v1", "video_demo_me_2026-01-15.mp4", models.KindVideo),
		rec("t1", "thumb_demo_me_2026-01-15.png", models.KindThumbnail),
	}

	// удаление самой миниатюры не трогает родителя
	ids, records, err := RecordsToRemoveFor(local, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids)
	assert.Len(t, records, 1)
}

func TestRecordsToRemoveFor_UnknownTarget(t *testing.T) {
	local := []*models.ArtifactRecord{
		rec("a1", "audio_talk_me_2026-01-15.webm", models.KindAudio),
	}

	_, _, err := RecordsToRemoveFor(local, "missing")
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
}
