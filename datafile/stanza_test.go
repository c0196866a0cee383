// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package datafile

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/psadeps/deps"
)

func TestProcessStanza(t *testing.T) {
	policy := deps.NewPolicy([]string{"MBEDTLS_RSA_C", "LEGACY_X"}, nil)
	for _, tc := range []struct {
		name   string
		stanza string
		want   string
	}{
		{
			name:   "empty",
			stanza: "",
			want:   "",
		},
		{
			name:   "blank",
			stanza: "\n\n",
			want:   "\n\n",
		},
		{
			name:   "insert",
			stanza: "Hash SHA-256\nfoo:PSA_ALG_SHA_256:x",
			want:   "Hash SHA-256\ndepends_on:PSA_WANT_ALG_SHA_256\nfoo:PSA_ALG_SHA_256:x",
		},
		{
			name:   "insert-trailing-newline",
			stanza: "desc\nfoo:PSA_ALG_MD5\n",
			want:   "desc\ndepends_on:PSA_WANT_ALG_MD5\nfoo:PSA_ALG_MD5\n",
		},
		{
			name:   "insert-leading-newline",
			stanza: "\ndesc\nfoo:PSA_ALG_MD5",
			want:   "\ndesc\ndepends_on:PSA_WANT_ALG_MD5\nfoo:PSA_ALG_MD5",
		},
		{
			name:   "nothing-to-insert",
			stanza: "desc\nfoo:x:\"\"",
			want:   "desc\nfoo:x:\"\"",
		},
		{
			name:   "replace",
			stanza: "desc\ndepends_on:PSA_WANT_ALG_FOO:HAND_A:HAND_B\nfoo:PSA_ALG_BAR",
			want:   "desc\ndepends_on:PSA_WANT_ALG_BAR:HAND_A:HAND_B\nfoo:PSA_ALG_BAR",
		},
		{
			name:   "drop-legacy",
			stanza: "desc\ndepends_on:LEGACY_X:MANUAL_Y\nfoo:x",
			want:   "desc\ndepends_on:MANUAL_Y\nfoo:x",
		},
		{
			name:   "remove",
			stanza: "desc\ndepends_on:MBEDTLS_RSA_C\nfoo:x",
			want:   "desc\nfoo:x",
		},
		{
			name:   "remove-before-comment",
			stanza: "desc\ndepends_on:!MBEDTLS_RSA_C\n# comment\nfoo:x\n",
			want:   "desc\n# comment\nfoo:x\n",
		},
		{
			name:   "keep-negated-manual",
			stanza: "desc\ndepends_on:!MBEDTLS_FOO\nfoo:PSA_ALG_SHA_1",
			want:   "desc\ndepends_on:PSA_WANT_ALG_SHA_1:!MBEDTLS_FOO\nfoo:PSA_ALG_SHA_1",
		},
		{
			name: "comments",
			stanza: "# comment\ndesc\n# deps next\ndepends_on:MBEDTLS_RSA_C:MBEDTLS_FOO\n" +
				"  # indented comment\nfoo:PSA_KEY_TYPE_AES:PSA_ALG_CTR",
			want: "# comment\ndesc\n# deps next\ndepends_on:PSA_WANT_ALG_CTR:PSA_WANT_KEY_TYPE_AES:MBEDTLS_FOO\n" +
				"  # indented comment\nfoo:PSA_KEY_TYPE_AES:PSA_ALG_CTR",
		},
		{
			name:   "whitespace-only-line",
			stanza: "desc\n \t\nfoo:PSA_ALG_MD5",
			want:   "desc\n \t\ndepends_on:PSA_WANT_ALG_MD5\nfoo:PSA_ALG_MD5",
		},
		{
			name:   "leader-only",
			stanza: "desc\ndepends_on\nfoo:x",
			want:   "desc\nfoo:x",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ProcessStanza(tc.stanza, "test_suite_x.data", 1, policy)
			if err != nil {
				t.Fatalf("ProcessStanza(%q)=%q, %v; want nil error", tc.stanza, got, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ProcessStanza(%q) -want +got:\n%s", tc.stanza, diff)
			}
		})
	}
}

func TestProcessStanza_FormatError(t *testing.T) {
	for _, tc := range []struct {
		name   string
		stanza string
		reason string
	}{
		{
			name:   "one-line",
			stanza: "desc only",
			reason: "not enough content lines",
		},
		{
			name:   "comment-only",
			stanza: "# comment\n",
			reason: "not enough content lines",
		},
		{
			name:   "four-lines",
			stanza: "desc\ndepends_on:FOO\nextra\nfoo:x",
			reason: "too many content lines",
		},
		{
			name:   "bad-leader",
			stanza: "desc\nrequires:FOO\nfoo:x",
			reason: `next-to-last line does not start with "depends_on:"`,
		},
		{
			name:   "indented-leader",
			stanza: "desc\n  depends_on:FOO\nfoo:x",
			reason: `next-to-last line does not start with "depends_on:"`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProcessStanza(tc.stanza, "test_suite_x.data", 7, nil)
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("ProcessStanza(%q)=_, %v; want %v", tc.stanza, err, ErrFormat)
			}
			var ferr *FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("ProcessStanza(%q)=_, %T; want *FormatError", tc.stanza, err)
			}
			want := &FormatError{File: "test_suite_x.data", Stanza: 7, Reason: tc.reason}
			if diff := cmp.Diff(want, ferr); diff != "" {
				t.Errorf("ProcessStanza(%q) error -want +got:\n%s", tc.stanza, diff)
			}
		})
	}
}

func TestProcessStanza_KeepManual(t *testing.T) {
	errBad := errors.New("bad predicate")
	policy := deps.NewPolicy([]string{"MBEDTLS_RSA_C"}, func(fileName, functionName string, arguments []string) (bool, error) {
		switch functionName {
		case "keep_me":
			return true, nil
		case "fail_me":
			return false, errBad
		}
		return false, nil
	})

	for _, stanza := range []string{
		"desc\ndepends_on:MBEDTLS_RSA_C\nkeep_me:PSA_ALG_MD5",
		"desc\nrequires:FOO\nkeep_me:PSA_ALG_MD5",
		"desc\nkeep_me:PSA_ALG_MD5",
	} {
		got, err := ProcessStanza(stanza, "test_suite_x.data", 1, policy)
		if err != nil || got != stanza {
			t.Errorf("ProcessStanza(%q)=%q, %v; want unchanged, nil", stanza, got, err)
		}
	}

	_, err := ProcessStanza("desc\nfail_me:x", "test_suite_x.data", 3, policy)
	if !errors.Is(err, errBad) {
		t.Errorf("ProcessStanza(fail_me)=_, %v; want %v", err, errBad)
	}
	if errors.Is(err, ErrFormat) {
		t.Errorf("ProcessStanza(fail_me)=_, %v; want not %v", err, ErrFormat)
	}
}

func TestRewrite(t *testing.T) {
	policy := deps.NewPolicy([]string{"MBEDTLS_SHA256_C"}, nil)
	const fname = "testdata/test_suite_hash.data"
	old, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(fname + ".want")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Rewrite(fname, string(old), policy)
	if err != nil {
		t.Fatalf("Rewrite(%q, _)=_, %v; want nil error", fname, err)
	}
	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("Rewrite(%q, _) -want +got:\n%s", fname, diff)
	}

	again, err := Rewrite(fname, got, policy)
	if err != nil {
		t.Fatalf("Rewrite(%q, <rewritten>)=_, %v; want nil error", fname, err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("Rewrite is not idempotent -first +second:\n%s", diff)
	}
}

func TestRewrite_Preservation(t *testing.T) {
	// Runs of blank lines, comments and indentation outside of
	// the dependency line are kept byte for byte.
	old := "desc 1\n  # keep me\t\nfoo:\"\":x\n\n\n\n# c\ndesc 2\ndepends_on:HAND_A\nbar:PSA_ALG_SHA_512\n\n"
	want := "desc 1\n  # keep me\t\nfoo:\"\":x\n\n\n\n# c\ndesc 2\ndepends_on:PSA_WANT_ALG_SHA_512:HAND_A\nbar:PSA_ALG_SHA_512\n\n"
	got, err := Rewrite("test_suite_x.data", old, nil)
	if err != nil {
		t.Fatalf("Rewrite=_, %v; want nil error", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rewrite -want +got:\n%s", diff)
	}
}

func TestRewrite_FormatError(t *testing.T) {
	content := strings.Join([]string{
		"desc 1\nfoo:PSA_ALG_MD5",
		"desc 2\ndepends_on:A\nextra\nfoo:x",
		"desc 3\nfoo:x",
	}, "\n\n")
	_, err := Rewrite("test_suite_x.data", content, nil)
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("Rewrite=_, %v; want *FormatError", err)
	}
	if ferr.Stanza != 2 || ferr.File != "test_suite_x.data" {
		t.Errorf("Rewrite error stanza=%d file=%q; want 2, %q", ferr.Stanza, ferr.File, "test_suite_x.data")
	}
	if got, want := err.Error(), "too many content lines in stanza 2 in test_suite_x.data"; got != want {
		t.Errorf("Rewrite error=%q; want %q", got, want)
	}
}
