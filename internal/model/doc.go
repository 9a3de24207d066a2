// Package model trains the collection-amount regressor and turns its
// predictions into one recommended attempt per credit.
//
// The regressor is a histogram-based gradient-boosted tree ensemble with
// squared-error loss. Trees grow leaf-wise up to num_leaves leaves and
// max_depth levels; each tree sees a random subset of features and, every
// bagging_freq rounds, a fresh random subset of training rows. Feature
// values are bucketed into at most max_bins bins fitted on the training
// rows, and missing values fall into a dedicated bin that always goes to
// the left child.
//
// Search runs a goptuna study with a seeded TPE sampler over the
// hyperparameter space. Every trial trains with a seed derived from the
// search seed and its trial number; a single worker makes the whole search
// reproducible.
package model
