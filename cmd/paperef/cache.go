// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the resolution cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache hit/miss statistics and entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openCache(pipelineConfig().Cache)
		if err != nil {
			return err
		}
		defer cleanup()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c.Stats())
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openCache(pipelineConfig().Cache)
		if err != nil {
			return err
		}
		defer cleanup()

		removed := c.CleanupExpired()
		fmt.Printf("removed %d expired entries, %d remain\n", removed, c.Size())
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openCache(pipelineConfig().Cache)
		if err != nil {
			return err
		}
		defer cleanup()

		n := c.Size()
		c.Clear()
		fmt.Printf("cleared %d entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
