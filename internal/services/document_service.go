package services

import (
	"context"
	"fmt"
	"log"

	"pointeuse/internal/models"
	"pointeuse/internal/repositories"
)

const documentLinksLimit = 5

type DocumentLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type DocumentService interface {
	// Links returns presigned download links for the employee's latest documents.
	Links(ctx context.Context, employee *models.Employee) ([]DocumentLink, error)
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	storage      MinioService
}

func NewDocumentService(documentRepo repositories.DocumentRepository, storage MinioService) DocumentService {
	return &documentService{documentRepo: documentRepo, storage: storage}
}

func (s *documentService) Links(ctx context.Context, employee *models.Employee) ([]DocumentLink, error) {
	documents, err := s.documentRepo.ListByEmployee(ctx, employee.TenantID, employee.ID, documentLinksLimit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	links := make([]DocumentLink, 0, len(documents))
	for _, doc := range documents {
		url, err := s.storage.GetPresignedURL(ctx, doc.ObjectKey)
		if err != nil {
			log.Printf("Failed to presign document %s: %v", doc.ID, err)
			continue
		}
		links = append(links, DocumentLink{Title: doc.Title, URL: url})
	}
	return links, nil
}
