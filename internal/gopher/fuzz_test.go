package gopher

import "testing"

func FuzzClassify(f *testing.F) {
	seeds := []string{
		"",
		"1Home\t/home\texample.org\t70\r\n.\r\n",
		"iWelcome\tfake\t(NULL)\t0\r\n0About\t/about.txt\texample.org\t70\r\n.\r\n",
		"3Not found\t\terror.host\t1\r\n",
		"plain text\nwith no tabs\n.\n",
		"..stuffed\n.\n",
		"\t\t\t\t\t",
		"1\x00\x01\t\xff\t\t-7\n",
	}
	for _, s := range seeds {
		f.Add(s, byte('1'))
	}

	f.Fuzz(func(t *testing.T, raw string, typ byte) {
		if len(raw) > 10_000 {
			raw = raw[:10_000]
		}
		origin := Address{Host: "example.org", Port: DefaultPort, Type: ParseItemType(typ)}
		got := Classify(origin, []byte(raw))
		switch got.Document.Kind {
		case KindMenu:
			if len(got.Document.Entries) > len(SplitLines([]byte(raw))) {
				t.Fatalf("more entries than lines: %d", len(got.Document.Entries))
			}
		case KindBinary:
			if string(got.Document.Data) != raw {
				t.Fatal("binary body was altered")
			}
		}
	})
}
