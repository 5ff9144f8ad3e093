package state

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

// ChromeLines is the number of rows taken by header, status and input.
const ChromeLines = 4

// BodyHeight is the viewport height left for the document.
func BodyHeight(height int, hasHelp bool) int {
	if height <= 0 {
		return 20
	}
	h := height - ChromeLines
	if hasHelp {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

// PageStep is how far pgup/pgdown move in a body of the given height.
func PageStep(bodyHeight int) int {
	if bodyHeight <= 1 {
		return 1
	}
	return bodyHeight - 1
}

// FollowCursor returns the smallest scroll offset change that keeps cursor
// inside a window of height rows starting at offset.
func FollowCursor(offset, cursor, height, totalRows int) int {
	if height <= 0 || totalRows <= height {
		return 0
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	return ClampCursor(offset, totalRows-height+1)
}
