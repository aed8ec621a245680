package banner

import (
	"fmt"

	"clinichat/pkg/config"
)

const banner = `
 ██████╗██╗     ██╗███╗   ██╗██╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔════╝██║     ██║████╗  ██║██║██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██║     ██║     ██║██╔██╗ ██║██║██║     ███████║███████║   ██║
██║     ██║     ██║██║╚██╗██║██║██║     ██╔══██║██╔══██║   ██║
╚██████╗███████╗██║██║ ╚████║██║╚██████╗██║  ██║██║  ██║   ██║
 ╚═════╝╚══════╝╚═╝╚═╝  ╚═══╝╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// Print prints the startup banner with the effective config, the source it
// was resolved from (flags, env or config) and build info.
func Print(cfg *config.Config, source, version string) {
	if source == "" {
		source = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", cfg.Addr())
	fmt.Printf("DB Path:  %s\n", cfg.Storage.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", source)
	fmt.Printf("History:  persisted=%v\n", cfg.PersistHistory())
	if cfg.Notify.AMQP.URL != "" {
		fmt.Printf("Notify:   amqp exchange=%s\n", cfg.Notify.AMQP.Exchange)
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /v1/contacts?q=<query>&filter=<all|unread|staff|reception>")
	fmt.Println("GET  /v1/contacts/{id}/messages - Conversation history for a contact")
	fmt.Println("GET  /v1/session - Current screen state snapshot")
	fmt.Println("POST /v1/session/select {contact} then POST /v1/session/confirm")
	fmt.Println("POST /v1/session/composer - Send the composed message")

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl 'http://localhost%s/v1/contacts?filter=staff'\n", cfg.Addr())
	fmt.Printf("curl -X POST 'http://localhost%s/v1/session/select' -d '{\"contact\":\"dr-1\"}'\n", cfg.Addr())

	fmt.Println("\n== Production? =================================================")
	be := len(cfg.Security.APIKeys.Backend)
	fe := len(cfg.Security.APIKeys.Frontend)
	if be == 0 && fe == 0 {
		fmt.Println("No API keys configured; all requests will be rejected")
	} else {
		fmt.Printf("API keys: backend=%d frontend=%d\n", be, fe)
	}
	if len(cfg.Security.CORS.AllowedOrigins) == 0 {
		fmt.Println("CORS: no allowed origins set (browser clients will be blocked)")
	}
}
