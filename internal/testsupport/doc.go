// Package testsupport provides shared helpers for package tests: isolated
// configurations, synthetic ARRIRAW headers, and catalog setup.
package testsupport
