package ingest

import "testing"

func TestParseAccept(t *testing.T) {
	rules := ParseAccept("image/*, image/png, .JPG, ,")
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].kind != ruleWildcard || rules[0].value != "image" {
		t.Fatalf("unexpected wildcard rule: %+v", rules[0])
	}
	if rules[1].kind != ruleMime || rules[1].value != "image/png" {
		t.Fatalf("unexpected mime rule: %+v", rules[1])
	}
	if rules[2].kind != ruleExt || rules[2].value != ".jpg" {
		t.Fatalf("unexpected extension rule: %+v", rules[2])
	}
}

func TestMatchAccept(t *testing.T) {
	cases := []struct {
		name   string
		accept string
		mime   string
		file   string
		want   bool
	}{
		{name: "wildcard matches any image mime", accept: "image/*", mime: "image/x-exotic", file: "photo.xyz", want: true},
		{name: "wildcard ignores extension", accept: "image/*", mime: "image/png", file: "document.pdf", want: true},
		{name: "wildcard rejects other category", accept: "image/*", mime: "video/mp4", file: "clip.mp4", want: false},
		{name: "exact mime", accept: "image/png,image/jpeg", mime: "image/jpeg", file: "a.bin", want: true},
		{name: "exact mime is case insensitive", accept: "image/png", mime: "IMAGE/PNG", file: "a.png", want: true},
		{name: "mime with parameters", accept: "image/png", mime: "image/png; charset=binary", file: "a.png", want: true},
		{name: "extension fallback", accept: ".jpg,.jpeg", mime: "application/octet-stream", file: "IMG_0001.JPG", want: true},
		{name: "pdf against image list", accept: "image/png,image/jpeg", mime: "application/pdf", file: "scan.pdf", want: false},
		{name: "no rule matches", accept: ".png", mime: "image/jpeg", file: "photo.jpg", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := matchAccept(ParseAccept(tc.accept), tc.mime, tc.file)
			if got != tc.want {
				t.Fatalf("matchAccept(%q, %q, %q) = %v, want %v", tc.accept, tc.mime, tc.file, got, tc.want)
			}
		})
	}
}
