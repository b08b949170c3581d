// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"os"

	"aer-cli/internal/config"
	"aer-cli/internal/issue"
	"aer-cli/internal/web"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	webPattern      string
	webOutput       string
	webWorkDir      string
	webEtag         string
	webLastModified string

	webCmd = &cobra.Command{
		Use:   "web",
		Short: "Inspect release pages and download files",
		Long: `Inspect release pages and download files.

` + SubtitleStyle.Render("Examples:") + `
  aer web links https://sourceforge.net/projects/astyle/files/astyle/
  aer web links --pattern '/v(?P<version>[\d\.]+)/.*\.exe$' https://example.org/releases
  aer web download https://example.org/files/app-x64.zip
  aer web download --etag 'W/"5e7"' https://example.org/files/app-x64.zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	linksCmd := &cobra.Command{
		Use:   "links <url>",
		Short: "List download links found on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listLinks(cmd, args[0])
		},
	}
	linksCmd.Flags().StringVarP(&webPattern, "pattern", "p", "", "only list links matching this regex (a 'version' group is captured)")
	webCmd.AddCommand(linksCmd)

	downloadCmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return downloadFile(cmd, args[0])
		},
	}
	downloadCmd.Flags().StringVarP(&webOutput, "output", "o", "", "file name to save as (defaults to the server-provided name)")
	downloadCmd.Flags().StringVarP(&webWorkDir, "workdir", "w", "", "directory to save the file in")
	downloadCmd.Flags().StringVar(&webEtag, "etag", "", "skip the download when the server still reports this etag")
	downloadCmd.Flags().StringVar(&webLastModified, "last-modified", "", "skip the download when unchanged since this timestamp")
	webCmd.AddCommand(downloadCmd)
}

// newWebClient builds a web client carrying the configured user agent.
func newWebClient() *web.Client {
	client := web.NewClient()
	if cfg, err := config.Load(); err == nil {
		client.SetUserAgent(cfg.UserAgent)
	}
	return client
}

func listLinks(cmd *cobra.Command, rawURL string) error {
	client := newWebClient()

	resp, err := client.GetHTML(cmd.Context(), rawURL)
	if err != nil {
		renderWebIssue(err)
		return err
	}

	parent, links, err := resp.Links(webPattern)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (%s)\n\n", TitleStyle.Render("Page:"), parent.URL, parent.Type)

	if len(links) == 0 {
		fmt.Println(SubtitleStyle.Render("(no matching links)"))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("URL", "Type", "Version", "Text")

	for _, link := range links {
		ver := ""
		if link.Version != nil {
			ver = link.Version.String()
		}
		table.Append(link.URL.String(), link.Type.String(), ver, link.Text)
	}

	table.Render()
	fmt.Printf("\nTotal links: %d\n", len(links))

	return nil
}

func downloadFile(cmd *cobra.Command, rawURL string) error {
	client := newWebClient()

	resp, err := client.GetBinary(cmd.Context(), rawURL, webEtag, webLastModified)
	if err != nil {
		renderWebIssue(err)
		return err
	}

	if resp.UpToDate() {
		fmt.Printf("%s %s is up to date\n", SuccessStyle.Render("✓"), rawURL)
		return nil
	}

	workDir := webWorkDir
	if workDir == "" {
		if cfg, err := config.Load(); err == nil {
			workDir = cfg.DownloadDir.String()
		}
	}
	if workDir != "" {
		resp.SetWorkDir(workDir)
	}

	path, err := resp.Download(webOutput)
	if err != nil {
		renderWebIssue(err)
		return err
	}

	fmt.Printf("%s Saved %s\n", SuccessStyle.Render("✓"), path)
	if etag := resp.ETag(); etag != "" {
		fmt.Printf("  %s: %s\n", CmdStyle.Render("etag"), etag)
	}
	if lastModified := resp.LastModified(); lastModified != "" {
		fmt.Printf("  %s: %s\n", CmdStyle.Render("last-modified"), lastModified)
	}

	return nil
}

// renderWebIssue prints remediation guidance for failed requests.
func renderWebIssue(err error) {
	var statusErr *web.StatusError
	if !errors.As(err, &statusErr) {
		return
	}

	if rendered, renderErr := issue.Get(issue.DownloadFailedId).Render("dark"); renderErr == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
}
