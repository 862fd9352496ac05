package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Carmen-Shannon/sloth/common"
	"github.com/Carmen-Shannon/sloth/engine/model"
	"github.com/Carmen-Shannon/sloth/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/sloth/internal/logger"
	"go.uber.org/zap"
)

// GPUUploader creates the GPU resources of a loaded scene. The wgpu GraphicsContext implements it.
type GPUUploader interface {
	// CreateMeshBuffers uploads vertex and index data into a new mesh provider.
	//
	// Parameters:
	//   - label: the debug label
	//   - vertexData: marshalled vertices
	//   - indexData: marshalled u32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider owning both buffers
	//   - error: an error if a buffer could not be created
	CreateMeshBuffers(label string, vertexData, indexData []byte, indexCount int) (bind_group_provider.BindGroupProvider, error)

	// CreateMaterialBinding uploads a texture, its sampler and factor uniform as one bind group.
	//
	// Parameters:
	//   - label: the debug label
	//   - texture: the RGBA8 pixels
	//   - sampler: the sampler configuration
	//   - factor: the diffuse factor uniform
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the material provider
	//   - error: an error if any resource could not be created
	CreateMaterialBinding(label string, texture common.TextureStagingData, sampler common.SamplerStagingData, factor model.GPUMaterialFactor) (bind_group_provider.BindGroupProvider, error)
}

// sceneLoader is the implementation of the SceneLoader interface.
type sceneLoader struct {
	uploader GPUUploader
	importer gltfImporter
	log      *zap.Logger

	baseDir       string
	decodeWorkers int
	httpClient    *http.Client
}

// SceneLoader loads a glTF 2.0 scene (JSON or GLB) from a model name, a file path or a URL and
// uploads it to the GPU as a Model.
type SceneLoader interface {
	// Load resolves source, imports the scene and uploads its meshes and materials. Meshes keep
	// primitive order. A material without a base-colour texture gets a 1x1 texture of its factor.
	//
	// Parameters:
	//   - ctx: cancels remote fetches
	//   - source: a model name under the asset dir, a .gltf/.glb path, or an http(s) URL
	//
	// Returns:
	//   - model.Model: the uploaded model
	//   - error: a *LoadError describing the failure
	Load(ctx context.Context, source string) (model.Model, error)
}

var _ SceneLoader = &sceneLoader{}

// NewSceneLoader creates a SceneLoader uploading through uploader.
//
// Parameters:
//   - uploader: creates GPU resources for meshes and materials
//   - options: variadic list of LoaderBuilderOption functions to configure the loader
//
// Returns:
//   - SceneLoader: the new loader
func NewSceneLoader(uploader GPUUploader, options ...LoaderBuilderOption) SceneLoader {
	l := &sceneLoader{
		uploader:      uploader,
		log:           logger.Named("loader"),
		baseDir:       "~/.sloth",
		decodeWorkers: 4,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		option(l)
	}

	l.importer = newGLTFImporter(l.decodeWorkers, l.log)
	return l
}

func (l *sceneLoader) Load(ctx context.Context, source string) (model.Model, error) {
	resolver, err := NewAssetResolver(source, l.baseDir, l.httpClient)
	if err != nil {
		return nil, newLoadError(ErrorKindNotFound, source, err)
	}

	start := time.Now()
	l.log.Info("loading scene", zap.String("source", source), zap.String("location", resolver.Describe()))

	scene, err := l.importer.Import(ctx, resolver)
	if err != nil {
		return nil, attribute(source, err)
	}

	m, err := l.upload(source, scene)
	if err != nil {
		return nil, attribute(source, err)
	}

	l.log.Info("scene loaded",
		zap.String("source", source),
		zap.Int("meshes", len(m.Meshes())),
		zap.Int("materials", len(m.Materials())),
		zap.Duration("took", time.Since(start)),
	)
	return m, nil
}

// attribute returns err as a *LoadError carrying source. Errors without a kind (network failures,
// cancellation, GPU upload failures) are reported as ErrorKindNotFound.
func attribute(source string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return newLoadError(le.Kind, source, err)
	}
	return newLoadError(ErrorKindNotFound, source, err)
}

func (l *sceneLoader) upload(source string, scene *importedScene) (model.Model, error) {
	materials := make([]model.Material, 0, len(scene.Materials))
	meshes := make([]model.Mesh, 0, len(scene.Meshes))

	// everything uploaded so far is released if a later upload fails
	release := func() {
		model.NewModel(model.WithMeshes(meshes...), model.WithMaterials(materials...)).Release()
	}

	for i, mat := range scene.Materials {
		factor := model.GPUMaterialFactor{Diffuse: mat.Factor}
		if !mat.HasTexture {
			// the factor is already baked into the 1x1 texture
			factor.Diffuse = [4]float32{1, 1, 1, 1}
		}
		provider, err := l.uploader.CreateMaterialBinding(fmt.Sprintf("%s [%d]", mat.Name, i), mat.Texture, mat.Sampler, factor)
		if err != nil {
			release()
			return nil, fmt.Errorf("uploading material %q: %w", mat.Name, err)
		}
		materials = append(materials, model.Material{
			Name:          mat.Name,
			Provider:      provider,
			DiffuseFactor: mat.Factor,
		})
	}

	for _, mesh := range scene.Meshes {
		if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(materials) {
			release()
			return nil, errorf(ErrorKindParseError, "mesh %q references material %d of %d", mesh.Name, mesh.MaterialIndex, len(materials))
		}
		provider, err := l.uploader.CreateMeshBuffers(mesh.Name,
			model.MarshalVertices(mesh.Vertices), model.MarshalIndices(mesh.Indices), len(mesh.Indices))
		if err != nil {
			release()
			return nil, fmt.Errorf("uploading mesh %q: %w", mesh.Name, err)
		}
		meshes = append(meshes, model.Mesh{
			Name:          mesh.Name,
			Provider:      provider,
			MaterialIndex: mesh.MaterialIndex,
		})
	}

	return model.NewModel(
		model.WithName(source),
		model.WithSource(source),
		model.WithMeshes(meshes...),
		model.WithMaterials(materials...),
	), nil
}
