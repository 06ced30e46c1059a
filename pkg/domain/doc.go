// Package domain defines the core business types shared across the MedLaw Gateway.
//
// This package contains pure domain logic with ZERO external dependencies outside the
// Go standard library. All types in this package are:
//
// - Independent of infrastructure (no database, HTTP client, etc.)
// - Technology-agnostic (no framework coupling)
// - Testable in isolation without mocks
//
// Other packages (auth, llm, retrieval, gateway) implement behaviour on top of
// these types. The dependency direction is always:
//
//	Infrastructure → Domain (CORRECT)
//	Domain → Infrastructure (FORBIDDEN)
package domain
