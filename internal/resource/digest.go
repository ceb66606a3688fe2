package resource

import (
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// digestFile — SHA3-256 файла, "0x" + hex: тот же формат, в котором хэши
// лежат в ledger. Аккумулятор живёт в рамках одного вызова — оборванный
// запрос не портит вычисление для следующих.
func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha3.New256()
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}
