package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"meshd/pkg/types"
)

// buildRootCmd constructs the meshctl command tree for driving a running meshd.
func buildRootCmd() *cobra.Command {
	defaultServer := "http://127.0.0.1:8080"
	if v := os.Getenv("MESHD_SERVER"); v != "" {
		defaultServer = v
	}
	root := &cobra.Command{
		Use:           "meshctl",
		Short:         "Operator CLI for a running meshd instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	server := root.PersistentFlags().String("server", defaultServer, "Base URL of the meshd server (defaults MESHD_SERVER)")

	predictCmd := &cobra.Command{
		Use:     "predict",
		Short:   "Submit an image and print the provider's prediction handle",
		Example: "  meshctl predict --image https://example.com/cat.png\n  meshctl predict --image ./cat.png --format obj",
	}
	image := predictCmd.Flags().String("image", "", "Image URL or local file path (files are inlined as base64)")
	version := predictCmd.Flags().String("version", "", "Provider model version override")
	format := predictCmd.Flags().String("format", "", "Output format override (glb, obj, ...)")
	predictCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if *image == "" {
			return fmt.Errorf("--image is required")
		}
		return fnPredict(*server, *image, *version, *format)
	}
	root.AddCommand(predictCmd)

	healthCmd := &cobra.Command{Use: "health", Short: "Check /healthz and /readyz", RunE: func(cmd *cobra.Command, args []string) error {
		return fnHealth(*server)
	}}
	root.AddCommand(healthCmd)

	return root
}

func fnPredict(server, image, version, format string) error {
	ref, err := imageRef(image)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(types.PredictionRequest{Image: ref, Version: version, Format: format})
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(strings.TrimSuffix(server, "/")+"/api/predictions", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}

// imageRef passes URLs through and inlines local files as base64 data URLs,
// mirroring what a browser client would send.
func imageRef(image string) (string, error) {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") || strings.HasPrefix(image, "data:") {
		return image, nil
	}
	data, err := os.ReadFile(image)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", image, err)
	}
	return "data:" + mimeForExt(filepath.Ext(image)) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "image/png"
}

func fnHealth(server string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := client.Get(strings.TrimSuffix(server, "/") + path)
		if err != nil {
			return err
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("%s %d %s\n", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
