package domain

import (
	"github.com/dashfault/dashfault-backend/internal/domain/media"
	"github.com/dashfault/dashfault-backend/internal/domain/notification"
	"github.com/dashfault/dashfault-backend/internal/domain/report"
	"github.com/dashfault/dashfault-backend/internal/domain/storage"
)

const (
	UploadTypeAuto   = media.UploadTypeAuto
	UploadTypeManual = media.UploadTypeManual

	FileTypeVideo = media.FileTypeVideo
	FileTypePDF   = media.FileTypePDF

	AnalysisStatusAnalyzing = media.AnalysisStatusAnalyzing
	AnalysisStatusCompleted = media.AnalysisStatusCompleted
	AnalysisStatusFailed    = media.AnalysisStatusFailed
)

type MediaAsset = media.MediaAsset
type UploadType = media.UploadType
type FileType = media.FileType
type AnalysisStatus = media.AnalysisStatus

type Report = report.Report
type StoredObject = storage.StoredObject
type PushToken = notification.PushToken
