package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/http/handler"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/service"
)

var _ = Describe("IngestHandler", func() {
	var (
		router   *gin.Engine
		svc      *mockIngestService
		importer *mockImporter
	)

	BeforeEach(func() {
		svc = &mockIngestService{}
		importer = &mockImporter{}
		var group *gin.RouterGroup
		router, group = newRouter()
		h := handler.NewIngestHandler(svc, importer, config.GitLabConfig{InstanceURL: "https://gitlab.example.com", Token: "server-token"})
		group.POST("/ingest/tickets", h.Tickets)
		group.POST("/ingest/commits", h.Commits)
		group.POST("/ingest/code-files", h.CodeFiles)
		group.POST("/import/gitlab", h.ImportGitLab)
	})

	It("passes the tenant and the batch through", func() {
		var gotOrg int64
		svc.ticketsFn = func(_ context.Context, orgID int64, tickets []model.Ticket) (*indexer.Summary, error) {
			gotOrg = orgID
			Expect(tickets).To(HaveLen(1))
			Expect(tickets[0].Key).To(Equal("AUTH-101"))
			return &indexer.Summary{Kind: model.KindTicket, Received: 1, Stored: 1, Indexed: 1}, nil
		}

		w := do(router, http.MethodPost, "/ingest/tickets", map[string]any{
			"tickets": []map[string]any{{"key": "AUTH-101", "summary": "JWT"}},
		})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gotOrg).To(Equal(int64(42)))
		Expect(decode(w)["indexed"]).To(BeNumerically("==", 1))
	})

	It("answers 207 when vector writes failed", func() {
		svc.commitsFn = func(_ context.Context, _ int64, c []model.Commit) (*indexer.Summary, error) {
			return &indexer.Summary{Kind: model.KindCommit, Received: 2, Stored: 2, Indexed: 1, Failed: 1}, nil
		}

		w := do(router, http.MethodPost, "/ingest/commits", map[string]any{
			"commits": []map[string]any{{"repository": "r", "sha": "abcdef1"}, {"repository": "r", "sha": "abcdef2"}},
		})

		Expect(w.Code).To(Equal(http.StatusMultiStatus))
		Expect(decode(w)["warning"]).To(ContainSubstring("vector index write failed"))
	})

	It("reports what was stored before a store failure", func() {
		svc.commitsFn = func(context.Context, int64, []model.Commit) (*indexer.Summary, error) {
			return &indexer.Summary{Kind: model.KindCommit, Received: 2, Stored: 1}, errors.New("connection reset")
		}

		w := do(router, http.MethodPost, "/ingest/commits", map[string]any{
			"commits": []map[string]any{{"repository": "r", "sha": "abcdef1"}},
		})

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(decode(w)).To(HaveKey("summary"))
	})

	It("maps validation errors to 400 with the offending field", func() {
		svc.ticketsFn = func(context.Context, int64, []model.Ticket) (*indexer.Summary, error) {
			return nil, domain.Invalid("tickets[0].summary", "required")
		}

		w := do(router, http.MethodPost, "/ingest/tickets", map[string]any{"tickets": []map[string]any{{"key": "AUTH-1"}}})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decode(w)["field"]).To(Equal("tickets[0].summary"))
	})

	It("rejects malformed bodies", func() {
		w := do(router, http.MethodPost, "/ingest/tickets", `{`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("accepts file content alongside code file metadata", func() {
		svc.filesFn = func(_ context.Context, _ int64, files []service.CodeFileInput) (*indexer.Summary, error) {
			Expect(files[0].FilePath).To(Equal("main.go"))
			Expect(files[0].Content).To(Equal("package main"))
			return &indexer.Summary{Kind: model.KindCodeFile, Received: 1, Stored: 1}, nil
		}

		w := do(router, http.MethodPost, "/ingest/code-files", map[string]any{
			"code_files": []map[string]any{{"repository": "r", "file_path": "main.go", "content": "package main"}},
		})
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("requires a tenant", func() {
		req := httptest.NewRequest(http.MethodPost, "/ingest/tickets", strings.NewReader(`{"tickets":[]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decode(w)["error"]).To(ContainSubstring("X-Organization-ID"))
	})

	Describe("ImportGitLab", func() {
		It("falls back to the server token and instance", func() {
			importer.importFn = func(_ context.Context, _ int64, opts service.GitLabImportOptions) (*service.GitLabImportResult, error) {
				Expect(opts.Token).To(Equal("server-token"))
				Expect(opts.InstanceURL).To(Equal("https://gitlab.example.com"))
				Expect(opts.IncludeWiki).To(BeTrue())
				return &service.GitLabImportResult{Project: opts.Project}, nil
			}

			w := do(router, http.MethodPost, "/import/gitlab", map[string]any{"project": "acme/api", "include_wiki": true})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["project"]).To(Equal("acme/api"))
		})

		It("surfaces upstream failures as 500", func() {
			importer.importFn = func(context.Context, int64, service.GitLabImportOptions) (*service.GitLabImportResult, error) {
				return nil, fmt.Errorf("fetch project: %w", errors.New("401 Unauthorized"))
			}

			w := do(router, http.MethodPost, "/import/gitlab", map[string]any{"project": "acme/api"})

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w)["error"]).To(Equal("failed to import gitlab project"))
		})
	})
})
