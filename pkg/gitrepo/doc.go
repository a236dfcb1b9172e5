// Package gitrepo fetches asset repositories into a scoped temporary
// workspace, pull-if-exists else clone. Fetch failures are fatal to the run;
// there are no retries. The workspace guarantees removal of the fetched
// trees on all exit paths.
package gitrepo
