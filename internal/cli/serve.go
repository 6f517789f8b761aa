package cli

import (
	"resumebuilder/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live preview and the resume workflow over HTTP",
	Long: `Start an HTTP server holding one resume session.

Available endpoints:
- GET  /preview: Rendered preview (?format=html|text|markdown|json)
- GET  /state: Current session state
- GET  /templates: Available templates
- POST /mode, /comparison, /template: Change view settings
- PUT  /draft: Replace the manual entry draft
- POST /draft/skills, /draft/experience: Append an empty entry
- PUT, DELETE /draft/skills/{index}, /draft/experience/{index}: Edit or remove one entry
- POST /upload: Upload a resume file for enhancement
- DELETE /upload: Clear the selected file
- POST /manual: Submit the manual entry draft
- POST /export/{format}: Export as pdf, docx or all
- POST /chat: Ask the feedback assistant
- GET  /health: Health check endpoint
- GET  /stats: Server statistics and rate limiting info`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")

	bindFlag("server.port", serveCmd.Flags().Lookup("port"))
	bindFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := server.Dependencies{
		Session:       a.session,
		Exports:       a.exports,
		Backend:       a.client,
		Observability: a.om,
	}
	return server.NewServer(a.cfg, server.ServerConfigFrom(a.cfg, Version), deps, a.logger).Start(cmd.Context())
}
