package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/reelgate/reelgate/internal/catalog/domain"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config config.Config
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   catalogdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      catalogdomain.Repository
	cdnDomain string
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("catalog.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		cdnDomain: p.Config.CDNDomain,
	}
}

func (s *Service) Get(ctx context.Context, titleID int64) (*catalogdomain.Response, error) {
	title, err := s.repo.FindByID(ctx, s.db, titleID)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, catalogdomain.ErrNotFound
	}

	streamURL, err := ComposeStreamURL(s.cdnDomain, title.StoragePath)
	if err != nil {
		s.log.Error("stream url composition failed",
			zap.String("title_id", title.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return &catalogdomain.Response{
		ID:          title.ID.String(),
		Name:        title.Name,
		Description: title.Description,
		StreamURL:   streamURL,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]catalogdomain.AdminResponse, error) {
	titles, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]catalogdomain.AdminResponse, 0, len(titles))
	for i := range titles {
		resp = append(resp, toAdminResponse(&titles[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req catalogdomain.UpsertRequest) (*catalogdomain.AdminResponse, error) {
	now := s.clock.Now()
	title := &catalogdomain.Title{
		ID:          s.genID.Generate(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		StoragePath: strings.TrimSpace(req.StoragePath),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, title); err != nil {
		return nil, err
	}

	resp := toAdminResponse(title)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, titleID int64, req catalogdomain.UpsertRequest) error {
	title, err := s.repo.FindByID(ctx, s.db, titleID)
	if err != nil {
		return err
	}
	if title == nil {
		return catalogdomain.ErrNotFound
	}

	title.Name = strings.TrimSpace(req.Name)
	title.Description = strings.TrimSpace(req.Description)
	title.StoragePath = strings.TrimSpace(req.StoragePath)
	title.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, s.db, title)
}

func (s *Service) Remove(ctx context.Context, titleID int64) error {
	return s.repo.Delete(ctx, s.db, titleID)
}

// ComposeStreamURL joins the CDN domain and a storage path into the public
// URL, tolerating a trailing slash on the domain and a leading slash on the
// path so the join never doubles or drops the separator.
func ComposeStreamURL(domain, storagePath string) (string, error) {
	domain = strings.TrimSpace(domain)
	storagePath = strings.TrimSpace(storagePath)
	if domain == "" || storagePath == "" {
		return "", catalogdomain.ErrStreamConfig
	}

	domain = strings.TrimRight(domain, "/")
	storagePath = strings.TrimLeft(storagePath, "/")
	return domain + "/" + storagePath, nil
}

func toAdminResponse(title *catalogdomain.Title) catalogdomain.AdminResponse {
	return catalogdomain.AdminResponse{
		ID:          title.ID.String(),
		Name:        title.Name,
		Description: title.Description,
		StoragePath: title.StoragePath,
		CreatedAt:   title.CreatedAt,
		UpdatedAt:   title.UpdatedAt,
	}
}
