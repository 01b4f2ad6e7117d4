// Package verification verifies that extracted files recreate the decoded content.
package verification

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/retroenv/ndsrom/internal/extract"
	"github.com/retroenv/retrogolib/log"
)

const maxReportedMismatches = 10

// VerifyExtraction re-reads every extracted file and compares its checksum
// against the decoded file content.
func VerifyExtraction(ctx context.Context, logger *log.Logger, files []extract.File) error {
	var mismatches int

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("verifying: %w", err)
		}

		written, err := os.ReadFile(file.Path)
		if err != nil {
			return fmt.Errorf("reading extracted file for comparison: %w", err)
		}

		err = checkBufferEqual(file.Entry.Bytes(), written)
		if err == nil {
			continue
		}

		mismatches++
		if mismatches <= maxReportedMismatches {
			logger.Error("File mismatch",
				log.String("path", file.Path),
				log.Uint16("id", file.Entry.ID),
				log.Err(err))
		}
	}

	if mismatches == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files mismatch", mismatches, len(files))
}

func checkBufferEqual(expected, written []byte) error {
	if len(expected) != len(written) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(expected), len(written))
	}

	want := crc32.ChecksumIEEE(expected)
	got := crc32.ChecksumIEEE(written)
	if want != got {
		return fmt.Errorf("checksum mismatch, expected 0x%08x but got 0x%08x", want, got)
	}
	return nil
}
