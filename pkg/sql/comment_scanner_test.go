package sql

import (
	"testing"
)

func TestScanCommentBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "no comments",
			input: "CREATE PROCEDURE dbo.Foo AS SELECT 1",
			want:  nil,
		},
		{
			name:  "single block",
			input: "/* header */ CREATE VIEW v AS SELECT 1",
			want:  []string{" header "},
		},
		{
			name:  "multiple blocks",
			input: "/* one */ SELECT 1 /* two */",
			want:  []string{" one ", " two "},
		},
		{
			name:  "multiline block",
			input: "/*\n line one\n line two\n*/\nCREATE TABLE t (id int)",
			want:  []string{"\n line one\n line two\n"},
		},
		{
			name:  "unterminated block stops discovery",
			input: "/* open comment CREATE PROCEDURE dbo.Foo",
			want:  nil,
		},
		{
			name:  "terminated then unterminated",
			input: "/* done */ SELECT 1 /* dangling",
			want:  []string{" done "},
		},
		{
			name:  "empty block",
			input: "/**/SELECT 1",
			want:  []string{""},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := ScanCommentBlocks(tt.input)
			if len(blocks) != len(tt.want) {
				t.Fatalf("expected %d blocks, got %d", len(tt.want), len(blocks))
			}
			for i, block := range blocks {
				if block.Text != tt.want[i] {
					t.Errorf("block %d: expected %q, got %q", i, tt.want[i], block.Text)
				}
			}
		})
	}
}

func TestScanCommentBlocks_Positions(t *testing.T) {
	input := "ab/* c */de"
	blocks := ScanCommentBlocks(input)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Start != 2 {
		t.Errorf("expected start 2, got %d", blocks[0].Start)
	}
	if blocks[0].End != 9 {
		t.Errorf("expected end 9, got %d", blocks[0].End)
	}
	if input[blocks[0].Start:blocks[0].End] != "/* c */" {
		t.Errorf("positions do not bound the block: %q", input[blocks[0].Start:blocks[0].End])
	}
}

func TestFindCreationStart(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPos   int
		wantFound bool
	}{
		{
			name:      "create at start",
			input:     "CREATE PROCEDURE dbo.Foo AS SELECT 1",
			wantPos:   0,
			wantFound: true,
		},
		{
			name:      "alter recognized",
			input:     "ALTER VIEW dbo.V AS SELECT 1",
			wantPos:   0,
			wantFound: true,
		},
		{
			name:      "lowercase keyword",
			input:     "create procedure dbo.Foo as select 1",
			wantPos:   0,
			wantFound: true,
		},
		{
			name:      "keyword inside comment skipped",
			input:     "/* CREATE fake */ CREATE PROCEDURE p AS SELECT 1",
			wantPos:   18,
			wantFound: true,
		},
		{
			name:      "keyword as identifier substring skipped",
			input:     "RECREATE_LOG x; CREATE VIEW v AS SELECT 1",
			wantPos:   16,
			wantFound: true,
		},
		{
			name:      "keyword with trailing identifier chars skipped",
			input:     "CREATED_AT; CREATE VIEW v AS SELECT 1",
			wantPos:   12,
			wantFound: true,
		},
		{
			name:      "not found",
			input:     "SELECT 1",
			wantFound: false,
		},
		{
			name:      "only inside comments",
			input:     "/* CREATE PROCEDURE p */ SELECT 1",
			wantFound: false,
		},
		{
			name:      "unterminated comment hides keyword",
			input:     "/* CREATE PROCEDURE p AS SELECT 1",
			wantFound: false,
		},
		{
			name:      "empty input",
			input:     "",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, found := FindCreationStart(tt.input)
			if found != tt.wantFound {
				t.Fatalf("expected found=%v, got %v", tt.wantFound, found)
			}
			if found && pos != tt.wantPos {
				t.Errorf("expected position %d, got %d", tt.wantPos, pos)
			}
		})
	}
}
