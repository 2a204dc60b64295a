// Package scriptura assembles independently authored, numbered HTML (or
// Markdown) section fragments into a single paginated report document.
//
// The pipeline loads fragments from a sections directory, builds an index
// of every addressable heading and figure, validates structural invariants
// (ordering, numbering, cross-references, assets, theme completeness,
// markup well-formedness), composes a five-role theme stylesheet chain,
// and emits one canonical HTML document plus a manifest describing its
// structure. PDF export hands the canonical document to headless Chrome.
//
// Basic usage:
//
//	svc := scriptura.New(scriptura.WithTimeout(60 * time.Second))
//	defer svc.Close()
//
//	cfg, err := scriptura.LoadConfig("config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Build(ctx, cfg, scriptura.BuildOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Lint runs the same validation standalone and reports every finding in
// one pass; Build refuses to assemble over error-severity findings.
package scriptura
