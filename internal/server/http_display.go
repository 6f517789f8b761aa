package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	fmt.Printf("Preview: http://%s:%s/preview\n", s.Host, s.Port)
	s.displayEndpoints()
	s.displayBackendInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health          - Health check and circuit breaker state")
	fmt.Println("  GET  /stats           - Server statistics")
	fmt.Println("  GET  /state           - Session snapshot")
	fmt.Println("  GET  /preview         - Rendered template (?format=html|markdown|text|json)")
	fmt.Println("  GET  /templates       - Available templates")
	fmt.Println("  POST /mode            - Switch between upload and manual entry")
	fmt.Println("  POST /comparison      - Set or toggle comparison mode")
	fmt.Println("  POST /template        - Select template")
	fmt.Println("  PUT  /draft           - Replace the manual draft")
	fmt.Println("  POST /draft/skills    - Append a skill (PUT, DELETE /draft/skills/{index})")
	fmt.Println("  POST /draft/experience - Append an experience entry (PUT, DELETE .../{index})")
	fmt.Println("  POST /upload          - Upload resume_file and enhance it")
	fmt.Println("  DELETE /upload        - Clear the selected file")
	fmt.Println("  POST /manual          - Submit a manual entry")
	fmt.Println("  POST /export/{format} - Export pdf, docx or all")
	fmt.Println("  POST /chat            - Feedback chat")
	if s.Observability != nil && s.Observability.MetricsHandler() != nil {
		fmt.Println("  GET  /metrics         - Prometheus metrics")
	}
}

func (s *Server) displayBackendInfo() {
	if s.Backend != nil {
		fmt.Printf("Backend: %s\n", s.Backend.BaseURL())
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min per IP, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}
