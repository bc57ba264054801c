// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine computes the opinion-space math for a conversation: a 2-D
PCA projection of participants and comments, k-means opinion clusters with
representative comments, and the pairwise comment correlation matrix.

# Pipeline

	snapshot -> impute -> project -> cluster -> representatives

Imputation fills unvoted cells with 0 and drops participants and comments
below the MinVotes engagement floor. Projection centers comment columns
and extracts the top two principal components with gonum's SVD. Clustering
runs deterministic k-means over k in [KMin, KMax], selecting k by mean
silhouette with ties toward fewer clusters. Representatives are the
comments whose in-cluster agree or disagree rate stands furthest above the
rest of the participants.

# Determinism

The same snapshot always produces the same Result: ids are processed in
sorted order, PCA signs are pinned, k-means seeds by farthest-point rather
than randomly, and every tie-break is by index or id.

# Degenerate Inputs

Thin data is not an error. Zero votes yield an empty projection and a
single empty cluster; a rank-deficient matrix fixes the unresolved axis at
0; coincident projections collapse to one cluster. Iterative refinement is
iteration-capped and returns its best effort.

# Caching

	result, err := eng.GetOrCompute(conversationID)

Results are memoized per conversation, keyed by the vote matrix
fingerprint. A stale cache is recomputed synchronously in the request path
under a per-conversation lock, so concurrent requests serialize instead of
duplicating work, and conversations never contend with each other.
Computation reads only an immutable snapshot - no failure can corrupt the
vote matrix.
*/
package engine
