// Package document stores case and client files in object storage.
package document

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/document"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// DefaultDownloadTTL is how long a presigned download link stays valid
const DefaultDownloadTTL = 15 * time.Minute

// DocumentService uploads, lists and serves documents
type DocumentService struct {
	documents   document.DocumentRepository
	cases       matter.CaseRepository
	clients     client.ClientRepository
	storage     ObjectStorage
	gate        subscription.Gate
	logger      *zap.Logger
	downloadTTL time.Duration
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documents document.DocumentRepository,
	cases matter.CaseRepository,
	clients client.ClientRepository,
	storage ObjectStorage,
	gate subscription.Gate,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documents:   documents,
		cases:       cases,
		clients:     clients,
		storage:     storage,
		gate:        gate,
		logger:      logger,
		downloadTTL: DefaultDownloadTTL,
	}
}

// SetDownloadTTL overrides the presigned link lifetime
func (s *DocumentService) SetDownloadTTL(ttl time.Duration) {
	if ttl > 0 {
		s.downloadTTL = ttl
	}
}

// Upload checks the plan, stores the object and records its metadata. The
// object is removed again when the metadata cannot be saved.
func (s *DocumentService) Upload(ctx context.Context, firmID, actorID uuid.UUID, req UploadRequest, file Upload) (*DocumentResponse, error) {
	name := req.Name
	if name == "" {
		name = file.Filename
	}
	d, err := document.NewDocument(firmID, name, document.Category(req.Category), file.ContentType, file.Size)
	if err != nil {
		return nil, err
	}
	if name != file.Filename && file.Filename != "" {
		// keep the uploaded file's extension in the key
		d.StorageKey = document.StorageKey(firmID, d.ID, file.Filename)
	}

	if err := s.gate.RequireFeature(ctx, firmID, subscription.FeatureDocumentStorage); err != nil {
		return nil, err
	}
	if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceDocuments, 1); err != nil {
		return nil, err
	}
	if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceStorageMB, d.SizeMB()); err != nil {
		return nil, err
	}
	caseID, clientID := req.Links()
	if err := s.validateLinks(ctx, firmID, caseID, clientID); err != nil {
		return nil, err
	}

	d.Description = req.Description
	d.Attach(caseID, clientID)
	d.UploadedBy = &actorID
	d.SetCreatedBy(actorID)

	if err := s.storage.Put(ctx, d.StorageKey, file.Body, file.Size, d.MimeType); err != nil {
		s.logger.Error("Failed to store document",
			zap.String("firm_id", firmID.String()),
			zap.String("key", d.StorageKey),
			zap.Error(err))
		return nil, err
	}
	if err := s.documents.Save(ctx, d); err != nil {
		if delErr := s.storage.Delete(ctx, d.StorageKey); delErr != nil {
			s.logger.Warn("Orphaned document object",
				zap.String("key", d.StorageKey),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Document uploaded",
		zap.String("firm_id", firmID.String()),
		zap.String("document_id", d.ID.String()),
		zap.Int64("size_bytes", d.SizeBytes))
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// GetByID retrieves a document's metadata
func (s *DocumentService) GetByID(ctx context.Context, firmID, docID uuid.UUID) (*DocumentResponse, error) {
	d, err := s.documents.FindByIDForFirm(ctx, firmID, docID)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// List retrieves a paginated list of documents
func (s *DocumentService) List(ctx context.Context, firmID uuid.UUID, filter DocumentListFilter) ([]DocumentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.CaseID != "" {
		domainFilter.Filters["case_id"] = filter.CaseID
	}
	if filter.ClientID != "" {
		domainFilter.Filters["client_id"] = filter.ClientID
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	docs, total, err := s.documents.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = ToDocumentResponse(&docs[i])
	}
	return out, total, nil
}

// Update renames, recategorises or relinks a document
func (s *DocumentService) Update(ctx context.Context, firmID, docID uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	d, err := s.documents.FindByIDForFirm(ctx, firmID, docID)
	if err != nil {
		return nil, err
	}
	if err := s.validateLinks(ctx, firmID, req.CaseID, req.ClientID); err != nil {
		return nil, err
	}
	if err := d.Rename(req.Name, req.Description, document.Category(req.Category)); err != nil {
		return nil, err
	}
	d.Attach(req.CaseID, req.ClientID)
	if err := s.documents.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// Download returns a presigned link to the file
func (s *DocumentService) Download(ctx context.Context, firmID, docID uuid.UUID) (*DownloadResponse, error) {
	d, err := s.documents.FindByIDForFirm(ctx, firmID, docID)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.storage.PresignDownload(ctx, d.StorageKey, d.Name, s.downloadTTL)
	if err != nil {
		return nil, err
	}
	return &DownloadResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// Open streams the file through the API, for storage drivers without
// presigned URLs
func (s *DocumentService) Open(ctx context.Context, firmID, docID uuid.UUID) (io.ReadCloser, *DocumentResponse, error) {
	d, err := s.documents.FindByIDForFirm(ctx, firmID, docID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Open(ctx, d.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	resp := ToDocumentResponse(d)
	return rc, &resp, nil
}

// Delete removes the object and then the metadata
func (s *DocumentService) Delete(ctx context.Context, firmID, docID uuid.UUID) error {
	d, err := s.documents.FindByIDForFirm(ctx, firmID, docID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, d.StorageKey); err != nil {
		return err
	}
	if err := s.documents.DeleteForFirm(ctx, firmID, docID); err != nil {
		return err
	}
	s.logger.Info("Document deleted",
		zap.String("firm_id", firmID.String()),
		zap.String("document_id", docID.String()))
	return nil
}

// Usage reports the number of documents and bytes stored by the firm
func (s *DocumentService) Usage(ctx context.Context, firmID uuid.UUID) (*StorageUsageResponse, error) {
	count, err := s.documents.CountForFirm(ctx, firmID)
	if err != nil {
		return nil, err
	}
	size, err := s.documents.TotalSizeForFirm(ctx, firmID)
	if err != nil {
		return nil, err
	}
	return &StorageUsageResponse{Documents: count, Bytes: size}, nil
}

func (s *DocumentService) validateLinks(ctx context.Context, firmID uuid.UUID, caseID, clientID *uuid.UUID) error {
	if caseID != nil {
		c, err := s.cases.FindByIDForFirm(ctx, firmID, *caseID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_CASE", "Case does not exist")
			}
			return err
		}
		if clientID != nil && c.ClientID != *clientID {
			return shared.NewDomainError("INVALID_CLIENT", "Client does not match the case")
		}
	}
	if clientID != nil {
		if _, err := s.clients.FindByIDForFirm(ctx, firmID, *clientID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_CLIENT", "Client does not exist")
			}
			return err
		}
	}
	return nil
}
