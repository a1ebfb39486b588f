// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package generator

import (
	"context"

	"zcl-template-gen/pkg/metadata"
	"zcl-template-gen/pkg/templating"
)

// storeSource adapts a metadata.Store to the templating.OptionSource
// interface so the option helpers can query the cluster-library store
// without the templating package depending on the storage layer.
type storeSource struct {
	store *metadata.Store
}

// NewOptionSource wraps a metadata store as an option source for the
// template engine.
func NewOptionSource(store *metadata.Store) templating.OptionSource {
	return &storeSource{store: store}
}

func (s *storeSource) ResolveOwningPackage(ctx context.Context) (int64, error) {
	return s.store.ResolveOwningPackage(ctx)
}

func (s *storeSource) FetchOptionValues(ctx context.Context, packageID int64, category string) ([]templating.OptionValue, error) {
	values, err := s.store.FetchOptionValues(ctx, packageID, category)
	if err != nil {
		return nil, err
	}
	converted := make([]templating.OptionValue, len(values))
	for i, v := range values {
		converted[i] = templating.OptionValue{Code: v.Code, Label: v.Label}
	}
	return converted, nil
}

func (s *storeSource) FetchSpecificOptionValue(ctx context.Context, packageID int64, category, key string) (*templating.OptionValue, error) {
	value, err := s.store.FetchSpecificOptionValue(ctx, packageID, category, key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return &templating.OptionValue{Code: value.Code, Label: value.Label}, nil
}
