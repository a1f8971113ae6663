package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Dosada05/goldsprint/models"
	"github.com/Dosada05/goldsprint/repositories"
)

// SnapshotArchiver writes completed tournaments to object storage so results
// outlive the database row.
type SnapshotArchiver struct {
	uploader FileUploader
}

func NewSnapshotArchiver(uploader FileUploader) *SnapshotArchiver {
	return &SnapshotArchiver{uploader: uploader}
}

func ArchiveKey(tournamentID string) string {
	return fmt.Sprintf("tournaments/%s/final.json", tournamentID)
}

func (a *SnapshotArchiver) Archive(ctx context.Context, t *models.Tournament) (*UploadResult, error) {
	data, err := repositories.EncodeSnapshot(t)
	if err != nil {
		return nil, err
	}
	return a.uploader.Upload(ctx, ArchiveKey(t.ID), "application/json", bytes.NewReader(data))
}

func (a *SnapshotArchiver) Remove(ctx context.Context, tournamentID string) error {
	return a.uploader.Delete(ctx, ArchiveKey(tournamentID))
}
