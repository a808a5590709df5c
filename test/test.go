package test

import (
	"os"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/lisa-tools/test/converters"
	"github.com/bitrise-steplib/lisa-tools/test/perfreport"
)

/*
ParsePerfResults walks through a performance results directory and runs every converter
which recognises some of its files.

The results directory has the following structure, nesting is optional:

	perf_results
	├── ntttcp-sender-p64.log
	├── ntttcp-receiver-p64.log
	└── fio
		├── fio-4k-randread.log
		└── fio-1024k-seqread.log
*/
func ParsePerfResults(resultsDir string, logger log.Logger) (perfreport.PerfReport, error) {
	var files []string
	err := filepath.WalkDir(resultsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return perfreport.PerfReport{}, err
	}

	logger.Debugf("found %d files in %s", len(files), resultsDir)

	var report perfreport.PerfReport
	for _, converter := range converters.List() {
		logger.Debugf("Running converter: %T", converter)

		detected := converter.Detect(files)

		logger.Debugf("known perf result detected: %v", detected)

		if !detected {
			continue
		}

		converted, err := converter.Convert()
		if err != nil {
			return perfreport.PerfReport{}, err
		}
		report.Append(converted)
	}

	report.Sort()
	return report, nil
}
