package attrwrite

import "math"

// QuaternionFromNormal rotates (0,0,1) onto the unit-length direction
// (nx,ny,nz) via half-vector construction, returning (x,y,z,w) (spec
// §4.4.10, used to orient curve/cylinder/cone cross-sections along a
// surface normal). Follows the same flat-component, out-value style as
// common/math.go's LookAt rather than introducing a vector/quaternion
// struct type.
func QuaternionFromNormal(nx, ny, nz float32) (x, y, z, w float32) {
	len := float32(math.Sqrt(float64(nx*nx + ny*ny + nz*nz)))
	if len == 0 {
		return 0, 0, 0, 1
	}
	nx, ny, nz = nx/len, ny/len, nz/len

	// from = (0,0,1); dot(from, n) = nz
	d := nz
	if d < -0.999999 {
		// 180-degree rotation: any axis orthogonal to (0,0,1) works. Use
		// (1,0,0) unless it's degenerate (it never is here, since from is
		// fixed), then cross it with from to get a perpendicular axis.
		ax, ay, az := cross(1, 0, 0, 0, 0, 1)
		al := float32(math.Sqrt(float64(ax*ax + ay*ay + az*az)))
		if al < 1e-6 {
			ax, ay, az = cross(0, 1, 0, 0, 0, 1)
			al = float32(math.Sqrt(float64(ax*ax + ay*ay + az*az)))
		}
		return ax / al, ay / al, az / al, 0
	}

	cx, cy, cz := cross(0, 0, 1, nx, ny, nz)
	qw := 1 + d
	qx, qy, qz := cx, cy, cz
	qlen := float32(math.Sqrt(float64(qx*qx + qy*qy + qz*qz + qw*qw)))
	if qlen == 0 {
		return 0, 0, 0, 1
	}
	return qx / qlen, qy / qlen, qz / qlen, qw / qlen
}

// cross computes the 3D cross product of (ax,ay,az) x (bx,by,bz).
func cross(ax, ay, az, bx, by, bz float32) (x, y, z float32) {
	return ay*bz - az*by, az*bx - ax*bz, ax*by - ay*bx
}
