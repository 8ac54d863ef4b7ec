package mapper_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"basegraph.app/correlate/internal/mapper"
	"basegraph.app/correlate/internal/model"
)

const pushHook = `{
  "object_kind": "push",
  "ref": "refs/heads/main",
  "project": {"path_with_namespace": "acme/api", "web_url": "https://gitlab.example.com/acme/api"},
  "commits": [
    {
      "id": "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678",
      "message": "AUTH-101 add jwt signer\n\nUses RS256.",
      "timestamp": "2026-03-02T10:15:00+01:00",
      "url": "https://gitlab.example.com/acme/api/-/commit/a1b2c3d",
      "author": {"name": "Sam", "email": "sam@example.com"},
      "added": ["internal/auth/jwt.go"],
      "modified": ["internal/auth/session.go", "go.mod"],
      "removed": ["internal/auth/session.go"]
    },
    {
      "id": "",
      "message": "ignored"
    }
  ]
}`

const mergeRequestHook = `{
  "object_kind": "merge_request",
  "user": {"name": "Sam Doe", "username": "sam"},
  "project": {"path_with_namespace": "acme/api"},
  "object_attributes": {
    "iid": 42,
    "title": "JWT auth",
    "description": "Implements AUTH-101",
    "state": "merged",
    "action": "merge",
    "url": "https://gitlab.example.com/acme/api/-/merge_requests/42",
    "created_at": "2026-03-01 09:00:00 UTC",
    "updated_at": "2026-03-03 12:30:00 UTC"
  }
}`

const wikiHook = `{
  "object_kind": "wiki_page",
  "project": {"path_with_namespace": "acme/api"},
  "object_attributes": {
    "title": "Auth design",
    "content": "We evaluated sticky sessions and JWT.",
    "format": "markdown",
    "slug": "auth-design",
    "url": "https://gitlab.example.com/acme/api/-/wikis/auth-design",
    "action": "update"
  }
}`

var _ = Describe("GitLabMapper", func() {
	var (
		m   *mapper.GitLabMapper
		ctx context.Context
	)

	BeforeEach(func() {
		m = mapper.NewGitLabMapper()
		ctx = context.Background()
	})

	Context("when mapping push hooks", func() {
		It("should produce one commit per pushed commit", func() {
			batch, err := m.Map(ctx, gitlab.EventTypePush, []byte(pushHook))
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Commits).To(HaveLen(1))

			c := batch.Commits[0]
			Expect(c.Repository).To(Equal("acme/api"))
			Expect(c.SHA).To(Equal("a1b2c3d4e5f60718293a4b5c6d7e8f9012345678"))
			Expect(c.Message).To(Equal("AUTH-101 add jwt signer\n\nUses RS256."))
			Expect(c.AuthorName).To(Equal("Sam"))
			Expect(c.AuthorEmail).To(Equal("sam@example.com"))
			Expect(c.CommitDate).To(Equal(time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)))
			Expect(c.FilesChanged).To(Equal([]string{"internal/auth/jwt.go", "internal/auth/session.go", "go.mod"}))
			Expect(*c.URL).To(Equal("https://gitlab.example.com/acme/api/-/commit/a1b2c3d"))
		})
	})

	Context("when mapping merge request hooks", func() {
		It("should produce a pull request keyed by project and iid", func() {
			batch, err := m.Map(ctx, gitlab.EventTypeMergeRequest, []byte(mergeRequestHook))
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.PullRequests).To(HaveLen(1))

			pr := batch.PullRequests[0]
			Expect(pr.Ref()).To(Equal("acme/api#42"))
			Expect(pr.Title).To(Equal("JWT auth"))
			Expect(pr.State).To(Equal(model.PullRequestStateMerged))
			Expect(pr.AuthorName).To(Equal("Sam Doe"))
			Expect(pr.CreatedAt).To(Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
			Expect(*pr.MergedAt).To(Equal(time.Date(2026, 3, 3, 12, 30, 0, 0, time.UTC)))
		})

		DescribeTable("should normalize states",
			func(state string, want model.PullRequestState) {
				body := `{"project":{"path_with_namespace":"acme/api"},"object_attributes":{"iid":1,"state":"` + state + `"}}`
				batch, err := m.Map(ctx, gitlab.EventTypeMergeRequest, []byte(body))
				Expect(err).NotTo(HaveOccurred())
				Expect(batch.PullRequests[0].State).To(Equal(want))
			},
			Entry("opened", "opened", model.PullRequestStateOpen),
			Entry("reopened", "reopened", model.PullRequestStateOpen),
			Entry("merged", "merged", model.PullRequestStateMerged),
			Entry("closed", "closed", model.PullRequestStateClosed),
			Entry("locked", "locked", model.PullRequestStateClosed),
		)

		It("should reject a merge request without an iid", func() {
			_, err := m.Map(ctx, gitlab.EventTypeMergeRequest, []byte(`{"project":{"path_with_namespace":"acme/api"}}`))
			Expect(errors.Is(err, mapper.ErrUnsupportedEvent)).To(BeTrue())
		})
	})

	Context("when mapping wiki page hooks", func() {
		It("should produce a document", func() {
			batch, err := m.Map(ctx, gitlab.EventTypeWikiPage, []byte(wikiHook))
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Documents).To(HaveLen(1))

			doc := batch.Documents[0]
			Expect(doc.SourceID).To(Equal("gitlab-wiki:acme/api/auth-design"))
			Expect(doc.Title).To(Equal("Auth design"))
			Expect(doc.Body).To(ContainSubstring("sticky sessions"))
			Expect(doc.Space).To(Equal("acme/api"))
			Expect(*doc.URL).To(HaveSuffix("/wikis/auth-design"))
		})

		It("should ignore deleted pages", func() {
			body := `{"project":{"path_with_namespace":"acme/api"},"object_attributes":{"slug":"x","action":"delete"}}`
			batch, err := m.Map(ctx, gitlab.EventTypeWikiPage, []byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Empty()).To(BeTrue())
		})
	})

	Context("when the event carries no entities", func() {
		It("should report it as unsupported", func() {
			_, err := m.Map(ctx, gitlab.EventTypeNote, []byte(`{}`))
			Expect(errors.Is(err, mapper.ErrUnsupportedEvent)).To(BeTrue())
		})

		It("should fail on malformed bodies", func() {
			_, err := m.Map(ctx, gitlab.EventTypePush, []byte(`{`))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, mapper.ErrUnsupportedEvent)).To(BeFalse())
		})
	})
})
