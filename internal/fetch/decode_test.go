package fetch

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

const japaneseSample = "利用者様の食事や入浴などの生活支援をお願いします。未経験の方も歓迎します。" +
	"福利厚生は充実しており、資格取得支援制度や退職金制度があります。年間休日は百二十日です。"

func mustShiftJIS(t *testing.T, s string) []byte {
	t.Helper()
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode shift_jis: %v", err)
	}
	return b
}

func TestDecode_UTF8PassesThroughAndDropsBOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<p>求人</p>")...)
	got, err := Decode(in, "text/html; charset=shift_jis")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "<p>求人</p>" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestDecode_DetectsShiftJISFromContent(t *testing.T) {
	src := "<html><body><p>" + strings.Repeat(japaneseSample, 4) + "</p></body></html>"
	got, err := Decode(mustShiftJIS(t, src), "text/html")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != src {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, src)
	}
}

func TestDecode_DetectsEUCJPFromContent(t *testing.T) {
	src := "<html><body><p>" + strings.Repeat(japaneseSample, 4) + "</p></body></html>"
	enc, err := japanese.EUCJP.NewEncoder().Bytes([]byte(src))
	if err != nil {
		t.Fatalf("encode euc-jp: %v", err)
	}
	got, err := Decode(enc, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != src {
		t.Fatalf("round trip mismatch")
	}
}
