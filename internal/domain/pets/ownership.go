package pets

import "context"

// OwnerOf expone el ownerUserID de una mascota activa.
// Se usa para evitar ciclos de imports entre módulos (pets <-> appointments).
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	if !p.Active {
		return "", ErrNotFound
	}
	return p.OwnerUserID, nil
}
