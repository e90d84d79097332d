// Package fileops holds the read-only filesystem helpers shared by the local
// catalog source and the config loader.
//
// Caller-supplied paths go through CleanRelativePath before being joined to a
// project root, which rejects any ".." segment:
//
//	rel, err := fileops.CleanRelativePath(userPath)
//	if err != nil {
//	    return err
//	}
//	data, err := root.ReadFile(filepath.FromSlash(rel))
//
// Project roots themselves are checked with ValidatePathSecurity so a
// misconfigured root cannot point at /etc or ~/.ssh.
//
// Scan walks a component directory inside an os.Root. Its Skip hook gets
// slash-separated paths relative to the scan root, so an exclusion policy can
// prune whole subtrees before they are read.
package fileops
