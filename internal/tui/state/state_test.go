package state

import "testing"

func TestClampCursor(t *testing.T) {
	if got := ClampCursor(-1, 3); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampCursor(3, 3); got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}
	if got := ClampCursor(1, 3); got != 1 {
		t.Fatalf("expected keep 1, got %d", got)
	}
}

func TestBodyHeightAndPageStep(t *testing.T) {
	if got := BodyHeight(0, false); got != 20 {
		t.Fatalf("expected default height 20, got %d", got)
	}
	if got := BodyHeight(12, false); got != 8 {
		t.Fatalf("expected height 8, got %d", got)
	}
	if got := BodyHeight(12, true); got != 7 {
		t.Fatalf("expected height 7 with help hint, got %d", got)
	}
	if got := BodyHeight(4, false); got != 3 {
		t.Fatalf("expected minimum height 3, got %d", got)
	}
	if got := PageStep(8); got != 7 {
		t.Fatalf("expected step 7, got %d", got)
	}
	if got := PageStep(1); got != 1 {
		t.Fatalf("expected step 1, got %d", got)
	}
}

func TestFollowCursor(t *testing.T) {
	cases := []struct {
		offset, cursor, height, total, want int
	}{
		{offset: 0, cursor: 2, height: 5, total: 20, want: 0},
		{offset: 0, cursor: 7, height: 5, total: 20, want: 3},
		{offset: 10, cursor: 4, height: 5, total: 20, want: 4},
		{offset: 0, cursor: 19, height: 5, total: 20, want: 15},
		{offset: 7, cursor: 2, height: 5, total: 3, want: 0},
	}
	for _, tc := range cases {
		if got := FollowCursor(tc.offset, tc.cursor, tc.height, tc.total); got != tc.want {
			t.Fatalf("FollowCursor(%d, %d, %d, %d) = %d, want %d", tc.offset, tc.cursor, tc.height, tc.total, got, tc.want)
		}
	}
}
