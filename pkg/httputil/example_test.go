package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-factor/pkg/config"
	"github.com/wonny/aegis-factor/pkg/httputil"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Example_download demonstrates fetching a remote dataset (SSOT client)
func Example_download() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})

	client := httputil.New(config.HTTPConfig{
		Timeout:      5 * time.Minute,
		MaxRetries:   3,
		RequestsPerS: 1,
	}, log)

	n, err := client.Download(context.Background(),
		"https://example.com/multifactor_data_2017_2022.json.bz2",
		"/tmp/aegis-factor/multifactor_data_2017_2022.json.bz2")
	if err != nil {
		fmt.Printf("Download failed: %v\n", err)
		return
	}
	fmt.Printf("Downloaded %d bytes\n", n)
}
