package verify

import (
	"testing"

	"github.com/johnxie/sourcedrift/internal/model"
)

var (
	dify     = model.CanonicalRepo{Host: "github.com", Owner: "langgenius", Name: "dify"}
	comfyOld = model.CanonicalRepo{Host: "github.com", Owner: "comfyanonymous", Name: "ComfyUI"}
	comfyNew = model.CanonicalRepo{Host: "github.com", Owner: "Comfy-Org", Name: "ComfyUI"}
)

// TestClassify tests the outcome rules for a single reference.
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		res     model.Resolved
		meta    *model.RepoMetadata
		want    model.Outcome
	}{
		{
			name: "live repo under its own name is verified",
			res:  model.Resolved{Named: dify, Canonical: dify},
			meta: &model.RepoMetadata{Repo: dify, Status: model.FetchStatusOK},
			want: model.OutcomeVerified,
		},
		{
			name: "live repo reached through an alias is redirected",
			res:  model.Resolved{Named: comfyOld, Canonical: comfyNew},
			meta: &model.RepoMetadata{Repo: comfyNew, Status: model.FetchStatusOK},
			want: model.OutcomeRedirected,
		},
		{
			name: "missing repo is unverified",
			res:  model.Resolved{Named: dify, Canonical: dify},
			meta: &model.RepoMetadata{Repo: dify, Status: model.FetchStatusNotFound, Reason: "repository not found"},
			want: model.OutcomeUnverified,
		},
		{
			name: "rate-limited repo is unverified even when aliased",
			res:  model.Resolved{Named: comfyOld, Canonical: comfyNew},
			meta: &model.RepoMetadata{Repo: comfyNew, Status: model.FetchStatusRateLimited, Reason: "rate limited"},
			want: model.OutcomeUnverified,
		},
		{
			name: "timed-out repo is unverified",
			res:  model.Resolved{Named: dify, Canonical: dify},
			meta: &model.RepoMetadata{Repo: dify, Status: model.FetchStatusError, Reason: "run timeout exceeded before fetch completed"},
			want: model.OutcomeUnverified,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ref := model.SourceReference{Raw: tt.res.Named.URL(), Document: "doc", Line: 1}
			record := Classify(ref, tt.res, tt.meta)

			if record.Outcome != tt.want {
				t.Errorf("Outcome = %s, want %s", record.Outcome, tt.want)
			}
			if record.Status != tt.meta.Status {
				t.Errorf("Status = %s, want %s", record.Status, tt.meta.Status)
			}
			if record.Reason != tt.meta.Reason {
				t.Errorf("Reason = %q, want %q", record.Reason, tt.meta.Reason)
			}
			if record.Named != tt.res.Named || record.Canonical != tt.res.Canonical {
				t.Errorf("identities = %s/%s, want %s/%s",
					record.Named, record.Canonical, tt.res.Named, tt.res.Canonical)
			}
		})
	}
}

// TestRun tests the classification pass over a whole run.
func TestRun(t *testing.T) {
	t.Parallel()

	run := model.NewRun("tutorials")
	run.Documents = []model.TutorialDocument{
		{
			Slug: "doc",
			References: []model.SourceReference{
				{Raw: dify.URL(), Document: "doc", Line: 1},
				{Raw: "https://github.com/broken", Document: "doc", Line: 2, Malformed: true},
				{Raw: "ambiguous/ref", Document: "doc", Line: 3},
			},
		},
	}
	run.Resolutions = map[string]model.Resolved{
		dify.URL(): {Named: dify, Canonical: dify},
		// "ambiguous/ref" has no resolution entry: it was excluded
	}
	run.Metadata = map[string]*model.RepoMetadata{
		dify.Key(): {Repo: dify, Status: model.FetchStatusOK},
	}

	Run(run)

	// Only the resolvable reference produces a record; the malformed and
	// ambiguous ones are reported through their own channels.
	if len(run.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(run.Records))
	}
	if run.Records[0].Outcome != model.OutcomeVerified {
		t.Errorf("Outcome = %s, want verified", run.Records[0].Outcome)
	}
}

// TestRunFailureIsolation tests that one unverified repository does not
// affect classification of the others.
func TestRunFailureIsolation(t *testing.T) {
	t.Parallel()

	gone := model.CanonicalRepo{Host: "github.com", Owner: "gone", Name: "repo"}

	run := model.NewRun("tutorials")
	run.Documents = []model.TutorialDocument{
		{
			Slug: "doc",
			References: []model.SourceReference{
				{Raw: gone.URL(), Document: "doc", Line: 1},
				{Raw: dify.URL(), Document: "doc", Line: 2},
			},
		},
	}
	run.Resolutions = map[string]model.Resolved{
		gone.URL(): {Named: gone, Canonical: gone},
		dify.URL(): {Named: dify, Canonical: dify},
	}
	run.Metadata = map[string]*model.RepoMetadata{
		gone.Key(): {Repo: gone, Status: model.FetchStatusNotFound, Reason: "repository not found"},
		dify.Key(): {Repo: dify, Status: model.FetchStatusOK},
	}

	Run(run)

	if len(run.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(run.Records))
	}
	if run.Records[0].Outcome != model.OutcomeUnverified {
		t.Errorf("Records[0].Outcome = %s, want unverified", run.Records[0].Outcome)
	}
	if run.Records[1].Outcome != model.OutcomeVerified {
		t.Errorf("Records[1].Outcome = %s, want verified", run.Records[1].Outcome)
	}
}
