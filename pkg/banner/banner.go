package banner

import "fmt"

const banner = `
 ██████╗ █████╗ ██████╗ ███████╗██╗     ██╗███╗   ██╗███████╗
██╔════╝██╔══██╗██╔══██╗██╔════╝██║     ██║████╗  ██║██╔════╝
██║     ███████║██████╔╝█████╗  ██║     ██║██╔██╗ ██║█████╗
██║     ██╔══██║██╔══██╗██╔══╝  ██║     ██║██║╚██╗██║██╔══╝
╚██████╗██║  ██║██║  ██║███████╗███████╗██║██║ ╚████║███████╗
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝╚═╝╚═╝  ╚═══╝╚══════╝
`

// Print writes the startup banner with the effective runtime values.
func Print(addr, dbPath, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET    /v1/threads                          - List the caller's threads")
	fmt.Println("POST   /v1/threads                          - Find or create a thread (JSON: participantId)")
	fmt.Println("GET    /v1/threads/{id}/messages            - List messages (marks them read)")
	fmt.Println("POST   /v1/threads/{id}/messages            - Send a message (JSON: content, attachmentType, attachmentData)")
	fmt.Println("PUT    /v1/threads/{id}/messages/{mid}      - Edit a message (JSON: content)")
	fmt.Println("DELETE /v1/threads/{id}/messages/{mid}      - Delete a message")
	fmt.Println("GET    /metrics, /healthz, /readyz, /docs/  - Operational endpoints")
}
