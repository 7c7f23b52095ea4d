package gitnotes_test

import (
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/notehub/gitnotes"
	"github.com/notehub/gitnotes/drafts"
	"github.com/notehub/gitnotes/suggest"
)

var _ = Describe("Session", func() {
	var (
		ctx context.Context
		gw  *memGateway
		s   *gitnotes.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		gw = newMemGateway(map[string]string{
			"README.md":         "# Notes\n",
			"docs/guide.md":     "guide body\n",
			"docs/api/ref.md":   "api reference\n",
			"docs/img/.gitkeep": "",
		})

		var err error
		s, err = gitnotes.NewSession(gw, gitnotes.WithDrafts(drafts.NewMemory()))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Tree().Expand(ctx, "")).To(Succeed())
		Expect(s.Tree().Expand(ctx, "docs")).To(Succeed())
	})

	Describe("creating and editing a new file", func() {
		It("selects the new file, opens it empty, and saves without a precondition", func() {
			path, err := s.CreateFile(ctx, "docs", "draft.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("docs/draft.md"))

			children, ok := s.Tree().Children("docs")
			Expect(ok).To(BeTrue())
			names := []string{}
			for _, e := range children {
				names = append(names, e.Name)
			}
			Expect(names).To(Equal([]string{"api", "img", "draft.md", "guide.md"}))

			content, err := s.Open(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(BeEmpty())

			result := s.Save(ctx, path, "first words\n", "Add draft")
			Expect(result.Status).To(Equal(gitnotes.StatusSuccess))
			Expect(gw.files["docs/draft.md"]).To(Equal("first words\n"))
			Expect(s.Selection().IsNew).To(BeFalse())
		})
	})

	Describe("folders", func() {
		It("creates a folder through its placeholder and deletes it again", func() {
			existed, err := s.CreateFolder(ctx, "docs", "drafts")
			Expect(err).NotTo(HaveOccurred())
			Expect(existed).To(BeFalse())
			Expect(gw.files).To(HaveKey("docs/drafts/" + gitnotes.PlaceholderName))

			Expect(s.Tree().Expand(ctx, "docs/drafts")).To(Succeed())

			entry := gitnotes.TreeEntry{Type: gitnotes.EntryDir, Name: "drafts", Path: "docs/drafts"}
			Expect(s.DeleteEntry(ctx, entry)).To(Succeed())
			Expect(gw.files).NotTo(HaveKey("docs/drafts/" + gitnotes.PlaceholderName))

			children, _ := s.Tree().Children("docs")
			for _, e := range children {
				Expect(e.Name).NotTo(Equal("drafts"))
			}
		})

		It("treats creating an already existing folder as soft success", func() {
			existed, err := s.CreateFolder(ctx, "", "docs2")
			Expect(err).NotTo(HaveOccurred())
			Expect(existed).To(BeFalse())

			// A second session does not know the folder exists yet.
			other, err := gitnotes.NewSession(gw)
			Expect(err).NotTo(HaveOccurred())
			existed, err = other.CreateFolder(ctx, "", "docs2")
			Expect(err).NotTo(HaveOccurred())
			Expect(existed).To(BeTrue())
		})

		It("refuses to delete a non-empty folder", func() {
			entry := gitnotes.TreeEntry{Type: gitnotes.EntryDir, Name: "api", Path: "docs/api"}
			err := s.DeleteEntry(ctx, entry)
			Expect(errors.Is(err, gitnotes.ErrValidation)).To(BeTrue())
			Expect(gw.files).To(HaveKey("docs/api/ref.md"))
		})
	})

	Describe("deleting with stale state", func() {
		It("rolls the mirror back when the remote revision is stale", func() {
			entry := gitnotes.TreeEntry{
				Type: gitnotes.EntryFile, Name: "guide.md",
				Path: "docs/guide.md", Revision: "stale-revision",
			}
			err := s.DeleteEntry(ctx, entry)
			Expect(errors.Is(err, gitnotes.ErrConflict)).To(BeTrue())

			children, _ := s.Tree().Children("docs")
			found := false
			for _, e := range children {
				if e.Name == "guide.md" {
					found = true
				}
			}
			Expect(found).To(BeTrue(), "the entry must reappear after rollback")
			Expect(gw.files).To(HaveKey("docs/guide.md"))
		})
	})

	Describe("save conflicts", func() {
		It("reports a conflict when the remote changed since load, and succeeds after reload", func() {
			_, err := s.Open(ctx, "docs/guide.md")
			Expect(err).NotTo(HaveOccurred())

			// Another writer updates the file behind this session's back.
			_, err = gw.WriteBlob(ctx, "docs/guide.md", gitnotes.TextContent("their edit\n"), "msg", gw.revs["docs/guide.md"])
			Expect(err).NotTo(HaveOccurred())

			result := s.Save(ctx, "docs/guide.md", "my edit\n", "Update guide")
			Expect(result.Status).To(Equal(gitnotes.StatusConflict))
			Expect(gw.files["docs/guide.md"]).To(Equal("their edit\n"), "a conflict never overwrites")

			content, err := s.Open(ctx, "docs/guide.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal("their edit\n"))

			result = s.Save(ctx, "docs/guide.md", "merged edit\n", "Update guide")
			Expect(result.Status).To(Equal(gitnotes.StatusSuccess))
			Expect(gw.files["docs/guide.md"]).To(Equal("merged edit\n"))
		})
	})

	Describe("staged multi-file commits", func() {
		stage := func(path, content string) {
			ok, err := s.Staging().Stage(path, gitnotes.TextContent(content))
			ExpectWithOffset(1, err).NotTo(HaveOccurred())
			ExpectWithOffset(1, ok).To(BeTrue())
		}

		It("commits a drop batch atomically and clears the buffer", func() {
			incoming := []gitnotes.IncomingFile{
				{Path: "drop/a.md", Open: func() (io.ReadCloser, error) {
					return io.NopCloser(strings.NewReader("alpha\n")), nil
				}},
				{Path: "drop/b.md", Open: func() (io.ReadCloser, error) {
					return io.NopCloser(strings.NewReader("beta\n")), nil
				}},
			}
			accepted, err := s.Staging().StageBatch(ctx, incoming)
			Expect(err).NotTo(HaveOccurred())
			Expect(accepted).To(ConsistOf("drop/a.md", "drop/b.md"))

			diffText, message, err := s.PrepareCommit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(diffText).To(ContainSubstring("+alpha"))
			Expect(diffText).To(ContainSubstring("+beta"))
			Expect(message).To(Equal(suggest.Fallback))

			outcome := s.CommitStaged(ctx, message)
			Expect(outcome.Status).To(Equal(gitnotes.StatusSuccess))
			Expect(outcome.URL).To(HavePrefix("https://git.example.test/"))

			Expect(gw.files["drop/a.md"]).To(Equal("alpha\n"))
			Expect(gw.files["drop/b.md"]).To(Equal("beta\n"))
			Expect(s.Staging().Len()).To(BeZero())
		})

		It("leaves the branch and buffer untouched when the head moves mid-commit", func() {
			stage("drop/a.md", "alpha\n")

			gw.afterHead = func() {
				_, err := gw.WriteBlob(ctx, "interloper.md", gitnotes.TextContent("surprise\n"), "msg", "")
				Expect(err).NotTo(HaveOccurred())
			}

			outcome := s.CommitStaged(ctx, "Add drop")
			Expect(outcome.Status).To(Equal(gitnotes.StatusConflict))

			Expect(gw.files).NotTo(HaveKey("drop/a.md"), "no partial branch mutation")
			Expect(gw.files).To(HaveKey("interloper.md"), "the interleaved commit survives")
			Expect(s.Staging().Len()).To(Equal(1), "the buffer stays intact for retry")

			outcome = s.CommitStaged(ctx, "Add drop")
			Expect(outcome.Status).To(Equal(gitnotes.StatusSuccess))
			Expect(gw.files).To(HaveKey("drop/a.md"))
		})
	})

	Describe("drafts", func() {
		It("keeps a draft across reloads and clears it on save", func() {
			_, err := s.Open(ctx, "docs/guide.md")
			Expect(err).NotTo(HaveOccurred())

			Expect(s.SaveDraft(ctx, "docs/guide.md", "half-finished thought\n")).To(Succeed())

			content, ok, err := s.LoadDraft(ctx, "docs/guide.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(content).To(Equal("half-finished thought\n"))

			result := s.Save(ctx, "docs/guide.md", "finished thought\n", "Update guide")
			Expect(result.Status).To(Equal(gitnotes.StatusSuccess))

			_, ok, err = s.LoadDraft(ctx, "docs/guide.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
