package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestManualProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewManualProgressBar(&buf, 10, 4)

	for i := 0; i < 6; i++ {
		p.Increment()
	}
	if p.Progress() != 1.0 {
		t.Errorf("progress should saturate: want(1) have(%v)", p.Progress())
	}

	p.Display()
	if !strings.Contains(buf.String(), "100.00%") {
		t.Errorf("display should show full progress: %q", buf.String())
	}
	if n := strings.Count(p.String(), "█"); n != 10 {
		t.Errorf("filled width: want(10) have(%v)", n)
	}
}
